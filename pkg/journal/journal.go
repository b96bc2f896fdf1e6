// Package journal appends per-fetch records to disk for offline rate-limit
// debugging. It is off by default and never on the request path: callers
// hand it a record and move on.
package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// FetchRecord captures one upstream fetch: what was asked, how long it
// took, and how it ended.
type FetchRecord struct {
	Timestamp time.Time         `msgpack:"timestamp"`
	Seq       int               `msgpack:"seq"`
	Operation string            `msgpack:"operation"`
	Args      map[string]string `msgpack:"args,omitempty"`
	Duration  time.Duration     `msgpack:"duration"`
	Status    string            `msgpack:"status"`
	ErrorKind string            `msgpack:"error_kind,omitempty"`
	ErrorMsg  string            `msgpack:"error_msg,omitempty"`
}

// Record statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// Writer appends msgpack-framed records to one file per UTC day.
type Writer struct {
	dir   string
	nowFn func() time.Time

	mu   sync.Mutex
	seq  int
	day  string
	file *os.File
	enc  *msgpack.Encoder
}

// NewWriter constructs a journal writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// Append writes one record. The record's sequence number and, when unset,
// its timestamp are filled in.
func (w *Writer) Append(rec *FetchRecord) error {
	if rec == nil {
		return fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.Seq = w.seq

	day := rec.Timestamp.UTC().Format("20060102")
	if w.file == nil || day != w.day {
		if err := w.rotate(day); err != nil {
			return err
		}
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("journal: encode record: %w", err)
	}
	return nil
}

func (w *Writer) rotate(day string) error {
	if w.file != nil {
		_ = w.file.Close()
	}
	path := filepath.Join(w.dir, "fetch_"+day+".msgpack")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", path, err)
	}
	w.file = file
	w.enc = msgpack.NewEncoder(file)
	w.day = day
	return nil
}

// Close flushes and closes the current journal file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.enc = nil
	return err
}

// ReadFile decodes every record in a journal file, in append order.
func ReadFile(path string) ([]FetchRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	defer file.Close()

	dec := msgpack.NewDecoder(file)
	var records []FetchRecord
	for {
		var rec FetchRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, fmt.Errorf("journal: decode %s: %w", path, err)
		}
		records = append(records, rec)
	}
}
