// Package cache holds result sets between MCP tool calls.
package cache

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/hyper-mcp/pkg/hyper"
)

// ResultSet is a list of documents returned by one hyper call.
type ResultSet struct {
	ID        string
	Service   string
	Operation string
	Docs      []hyper.Doc
	CreatedAt time.Time
}

// Maps returns the documents as plain maps for the analysis packages.
func (rs *ResultSet) Maps() []map[string]any {
	out := make([]map[string]any, len(rs.Docs))
	for i, d := range rs.Docs {
		out[i] = d
	}
	return out
}

// IDs returns the id of each document read from field ("" when absent).
func (rs *ResultSet) IDs(field string) []string {
	out := make([]string, len(rs.Docs))
	for i, d := range rs.Docs {
		out[i] = d.ID(field)
	}
	return out
}

// ResultStore provides thread-safe LRU caching of result sets so that later
// tool calls (jq, schema inference, validation) can refer to them by id.
type ResultStore struct {
	cache *lru.Cache[string, *ResultSet]
	now   func() time.Time
}

// NewResultStore creates a new LRU store with the specified maximum number of sets.
func NewResultStore(maxItems int) (*ResultStore, error) {
	c, err := lru.New[string, *ResultSet](maxItems)
	if err != nil {
		return nil, err
	}
	return &ResultStore{cache: c, now: time.Now}, nil
}

// Put stores docs under a fresh id and returns the set.
func (s *ResultStore) Put(service, operation string, docs []hyper.Doc) *ResultSet {
	rs := &ResultSet{
		ID:        newID(),
		Service:   service,
		Operation: operation,
		Docs:      docs,
		CreatedAt: s.now(),
	}
	s.cache.Add(rs.ID, rs)
	return rs
}

// Get retrieves a result set by its ID.
// Returns the set and true if found, nil and false otherwise.
func (s *ResultStore) Get(id string) (*ResultSet, bool) {
	return s.cache.Get(id)
}

// Len returns the current number of sets in the store.
func (s *ResultStore) Len() int {
	return s.cache.Len()
}

func newID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return "rs_" + hex.EncodeToString(b[:])
}

// Flight collapses concurrent identical reads, such as several resource
// reads of the same document, into one backend call.
type Flight struct {
	group singleflight.Group

	mu     sync.Mutex
	shared int
}

// Do runs fn once per key among concurrent callers.
func (f *Flight) Do(key string, fn func() (hyper.Result, error)) (hyper.Result, error) {
	v, err, shared := f.group.Do(key, func() (any, error) {
		return fn()
	})
	if shared {
		f.mu.Lock()
		f.shared++
		f.mu.Unlock()
	}
	res, _ := v.(hyper.Result)
	return res, err
}

// Shared reports how many calls received a result computed for another caller.
func (f *Flight) Shared() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shared
}
