// Package portfolio keeps session-scoped holdings in process memory.
// Nothing here touches durable storage: a portfolio lives exactly as long
// as its session.
package portfolio

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Holding is one coin position. PurchasePrice is optional; without it the
// profit/loss columns stay zero.
type Holding struct {
	CoinID        string           `json:"coin_id"`
	Name          string           `json:"name"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
}

// Portfolio is one session's holdings, keyed by coin id.
type Portfolio struct {
	mu       sync.RWMutex
	holdings map[string]*Holding
}

// New returns an empty portfolio.
func New() *Portfolio {
	return &Portfolio{holdings: make(map[string]*Holding)}
}

// AddOrMerge inserts a holding or, when the coin id already exists, sums
// the quantities. The original purchase price wins a merge; Edit is the
// only way to change it.
func (p *Portfolio) AddOrMerge(h Holding) error {
	h.CoinID = strings.TrimSpace(h.CoinID)
	if h.CoinID == "" {
		return fmt.Errorf("portfolio: coin id is required")
	}
	if h.Quantity.IsNegative() {
		return fmt.Errorf("portfolio: quantity must not be negative")
	}
	if h.PurchasePrice != nil && h.PurchasePrice.IsNegative() {
		return fmt.Errorf("portfolio: purchase price must not be negative")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.holdings[h.CoinID]; ok {
		existing.Quantity = existing.Quantity.Add(h.Quantity)
		if existing.Name == "" {
			existing.Name = h.Name
		}
		return nil
	}
	p.holdings[h.CoinID] = &Holding{
		CoinID:        h.CoinID,
		Name:          h.Name,
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice,
	}
	return nil
}

// Edit replaces the quantity and purchase price of an existing holding.
// A nil purchase price clears it.
func (p *Portfolio) Edit(coinID string, quantity decimal.Decimal, purchasePrice *decimal.Decimal) error {
	if quantity.IsNegative() {
		return fmt.Errorf("portfolio: quantity must not be negative")
	}
	if purchasePrice != nil && purchasePrice.IsNegative() {
		return fmt.Errorf("portfolio: purchase price must not be negative")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	holding, ok := p.holdings[strings.TrimSpace(coinID)]
	if !ok {
		return fmt.Errorf("portfolio: no holding for %q", coinID)
	}
	holding.Quantity = quantity
	holding.PurchasePrice = purchasePrice
	return nil
}

// Remove deletes a holding.
func (p *Portfolio) Remove(coinID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	coinID = strings.TrimSpace(coinID)
	if _, ok := p.holdings[coinID]; !ok {
		return fmt.Errorf("portfolio: no holding for %q", coinID)
	}
	delete(p.holdings, coinID)
	return nil
}

// List returns the holdings sorted by coin id for stable rendering.
func (p *Portfolio) List() []Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Holding, 0, len(p.holdings))
	for _, h := range p.holdings {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CoinID < out[j].CoinID })
	return out
}

// CoinIDs returns the ids currently held, for the price batch lookup.
func (p *Portfolio) CoinIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.holdings))
	for id := range p.holdings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of holdings.
func (p *Portfolio) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.holdings)
}
