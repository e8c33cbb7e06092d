package core

// OrderBookBackend resolves symbols to their books. Implementations create
// an empty book on first access and never return nil.
type OrderBookBackend interface {
	// GetOrCreate returns the book for symbol, creating it if needed.
	GetOrCreate(symbol string) *OrderBook

	// Get returns the book for symbol if it has been created.
	Get(symbol string) (*OrderBook, bool)

	// Symbols lists the symbols with a book, sorted.
	Symbols() []string
}
