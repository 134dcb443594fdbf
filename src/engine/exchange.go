package engine

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Exchange routes operations by ticker to one Book per traded instrument,
// creating books lazily. Each book runs under its own exclusive lock — one
// matching thread per symbol — so a whole add/amend/cancel, with every fill
// and cascade it produces, is visible atomically.
type Exchange struct {
	mu      sync.RWMutex
	books   map[string]*lockedBook
	plugins []PluginFactory
}

type lockedBook struct {
	mu   sync.Mutex
	book *Book
}

// NewExchange creates an exchange whose books carry the given plugins.
func NewExchange(plugins ...PluginFactory) *Exchange {
	return &Exchange{
		books:   make(map[string]*lockedBook),
		plugins: plugins,
	}
}

func (e *Exchange) get(ticker string) *lockedBook {
	e.mu.RLock()
	if lb, ok := e.books[ticker]; ok {
		e.mu.RUnlock()
		return lb
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// edge case: double-check after acquiring write lock
	if lb, ok := e.books[ticker]; ok {
		return lb
	}
	lb := &lockedBook{book: NewBook(e.plugins...)}
	e.books[ticker] = lb
	return lb
}

// Tickers returns the tickers with a book, in no particular order.
func (e *Exchange) Tickers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tickers := make([]string, 0, len(e.books))
	for ticker := range e.books {
		tickers = append(tickers, ticker)
	}
	return tickers
}

func (e *Exchange) AddOrder(
	ticker string,
	side Side,
	price decimal.Decimal,
	size int64,
	style Style,
) (int64, []Fill, []int64, error) {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.book.AddOrder(side, price, size, style)
}

func (e *Exchange) AmendOrder(ticker string, orderID int64, size int64) error {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.book.AmendOrder(orderID, size)
}

func (e *Exchange) CancelOrder(ticker string, orderID int64) error {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.book.CancelOrder(orderID)
}

// Order returns a copy of a live order on the ticker's book.
func (e *Exchange) Order(ticker string, orderID int64) (Order, bool) {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.book.Order(orderID)
}

// OrderCount is the number of live orders on the ticker's book.
func (e *Exchange) OrderCount(ticker string) int {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.book.OrderCount()
}

// Depth snapshots the best levels per side, best first, as price and size
// pairs. A non-positive count returns the full depth.
func (e *Exchange) Depth(ticker string, levels int) (bids []LevelSnapshot, offers []LevelSnapshot) {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	bidLevels, offerLevels := lb.book.Depth(levels)
	return snapshotLevels(bidLevels), snapshotLevels(offerLevels)
}

// Format renders the ticker's book in the canonical "bids : offers" form.
func (e *Exchange) Format(ticker string, levels int) (string, error) {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.book.Format(levels)
}

// Render renders the ticker's full book depth.
func (e *Exchange) Render(ticker string) string {
	lb := e.get(ticker)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.book.String()
}

// LevelSnapshot is a point-in-time copy of one price level.
type LevelSnapshot struct {
	Price decimal.Decimal
	Size  int64
}

func snapshotLevels(levels []*Level) []LevelSnapshot {
	snapshot := make([]LevelSnapshot, len(levels))
	for i, level := range levels {
		snapshot[i] = LevelSnapshot{Price: level.Price, Size: level.Size()}
	}
	return snapshot
}
