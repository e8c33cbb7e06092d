package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/erain9/matchingo/pkg/core"
)

// BookInfo contains metadata about a registered order book
type BookInfo struct {
	Symbol    string
	CreatedAt time.Time
}

// MemoryBackend is an in-process registry of order books keyed by
// uppercased symbol. Books are created on first access and never removed.
type MemoryBackend struct {
	mu    sync.RWMutex
	books map[string]*core.OrderBook
	info  map[string]BookInfo

	bookOptions []core.OrderBookOption
	now         func() time.Time
}

var _ core.OrderBookBackend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty registry. The options are applied to
// every book it creates.
func NewMemoryBackend(opts ...core.OrderBookOption) *MemoryBackend {
	return &MemoryBackend{
		books:       make(map[string]*core.OrderBook),
		info:        make(map[string]BookInfo),
		bookOptions: opts,
		now:         time.Now,
	}
}

// NormalizeSymbol trims and uppercases a symbol. The result never shares
// memory with the argument, so it is safe to keep as a map key even when
// symbol points into a reused request buffer.
func NormalizeSymbol(symbol string) string {
	return strings.Clone(strings.ToUpper(strings.TrimSpace(symbol)))
}

// GetOrCreate returns the book for symbol, creating an empty one if needed.
func (m *MemoryBackend) GetOrCreate(symbol string) *core.OrderBook {
	key := NormalizeSymbol(symbol)

	m.mu.RLock()
	book, ok := m.books[key]
	m.mu.RUnlock()
	if ok {
		return book
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if book, ok := m.books[key]; ok {
		return book
	}
	book = core.NewOrderBook(key, m.bookOptions...)
	m.books[key] = book
	m.info[key] = BookInfo{Symbol: key, CreatedAt: m.now()}
	return book
}

// Get returns the book for symbol if it exists
func (m *MemoryBackend) Get(symbol string) (*core.OrderBook, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	book, ok := m.books[NormalizeSymbol(symbol)]
	return book, ok
}

// Info returns metadata for symbol if its book exists
func (m *MemoryBackend) Info(symbol string) (BookInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.info[NormalizeSymbol(symbol)]
	return info, ok
}

// Symbols returns the registered symbols in lexical order
func (m *MemoryBackend) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.books))
	for symbol := range m.books {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
