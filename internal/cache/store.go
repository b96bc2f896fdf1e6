package cache

import (
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
)

// Class selects which TTL bucket a key lives in. One in-process cache is
// kept per class because expiry is fixed per cache instance.
type Class string

const (
	ClassCoinList Class = "coin_list"
	ClassMarkets  Class = "markets"
	ClassChart    Class = "chart"
	ClassOHLC     Class = "ohlc"
	ClassGlobal   Class = "global"
	ClassDetail   Class = "detail"
	ClassScreener Class = "screener"
	ClassPrices   Class = "prices"
	ClassNews     Class = "news"
)

// cacheLimit bounds entries per class. Key cardinality is tiny for most
// operations; charts and prices are the only ones that fan out per coin.
const cacheLimit = 4096

// Store is the shared result cache in front of the data access layer.
// Take is the only read path: it returns a fresh entry when one exists
// and otherwise runs fetch exactly once per key, no matter how many
// requests arrive at an expired entry together.
type Store struct {
	caches map[Class]*collection.Cache
}

// NewStore builds one cache per operation class from the TTL set.
func NewStore(ttl TTLSet) (*Store, error) {
	classes := map[Class]time.Duration{
		ClassCoinList: ttl.CoinList,
		ClassMarkets:  ttl.Markets,
		ClassChart:    ttl.Chart,
		ClassOHLC:     ttl.OHLC,
		ClassGlobal:   ttl.Global,
		ClassDetail:   ttl.Detail,
		ClassScreener: ttl.Screener,
		ClassPrices:   ttl.Prices,
		ClassNews:     ttl.News,
	}
	caches := make(map[Class]*collection.Cache, len(classes))
	for class, expire := range classes {
		c, err := collection.NewCache(expire,
			collection.WithName(Namespace+"_"+string(class)),
			collection.WithLimit(cacheLimit))
		if err != nil {
			return nil, fmt.Errorf("cache: build %s cache: %w", class, err)
		}
		caches[class] = c
	}
	return &Store{caches: caches}, nil
}

// MustNewStore is NewStore panicking on error, for wiring at startup.
func MustNewStore(ttl TTLSet) *Store {
	store, err := NewStore(ttl)
	if err != nil {
		panic(err)
	}
	return store
}

// Take returns the cached value for key, running fetch under a per-key
// barrier when the entry is missing or expired. The fetch result is stored
// whenever fetch returns nil error, so callers that absorb failures into
// default values get those defaults cached for the full TTL.
func (s *Store) Take(class Class, key string, fetch func() (any, error)) (any, error) {
	cache, ok := s.caches[class]
	if !ok {
		return nil, fmt.Errorf("cache: unknown class %q", class)
	}
	return cache.Take(key, fetch)
}

// Get reads a cached entry without triggering a fetch.
func (s *Store) Get(class Class, key string) (any, bool) {
	cache, ok := s.caches[class]
	if !ok {
		return nil, false
	}
	return cache.Get(key)
}

// Set stores a value directly, bypassing the fetch path.
func (s *Store) Set(class Class, key string, value any) {
	if cache, ok := s.caches[class]; ok {
		cache.Set(key, value)
	}
}

// Invalidate drops a single entry.
func (s *Store) Invalidate(class Class, key string) {
	if cache, ok := s.caches[class]; ok {
		cache.Del(key)
	}
}
