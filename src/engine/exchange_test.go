package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestExchangeIsolatesTickers(t *testing.T) {
	ex := NewExchange(DefaultPlugins...)

	aaplID, _, _, err := ex.AddOrder("AAPL", SideBuy, dec("10.5"), 5, StyleLimit)
	if err != nil {
		t.Fatalf("add on AAPL failed: %v", err)
	}
	_, _, _, err = ex.AddOrder("MSFT", SideSell, dec("200"), 3, StyleLimit)
	if err != nil {
		t.Fatalf("add on MSFT failed: %v", err)
	}

	if got := ex.Render("AAPL"); got != "10.5x5 : " {
		t.Errorf("got AAPL book: %q", got)
	}
	if got := ex.Render("MSFT"); got != " : 200x3" {
		t.Errorf("got MSFT book: %q", got)
	}

	// an order id only resolves on its own ticker's book
	if _, ok := ex.Order("MSFT", aaplID); ok {
		t.Error("AAPL order visible on MSFT book")
	}
	if err := ex.CancelOrder("MSFT", aaplID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got: %v", err)
	}

	tickers := ex.Tickers()
	sort.Strings(tickers)
	if len(tickers) != 2 || tickers[0] != "AAPL" || tickers[1] != "MSFT" {
		t.Errorf("got tickers: %v", tickers)
	}
}

func TestExchangeDepthSnapshot(t *testing.T) {
	ex := NewExchange()

	mustAddEx(t, ex, "AAPL", SideBuy, "10", 5)
	mustAddEx(t, ex, "AAPL", SideBuy, "10.5", 3)
	mustAddEx(t, ex, "AAPL", SideBuy, "9.5", 7)
	mustAddEx(t, ex, "AAPL", SideSell, "11", 4)

	bids, offers := ex.Depth("AAPL", 2)
	if len(bids) != 2 || len(offers) != 1 {
		t.Fatalf("got %d bid and %d offer levels", len(bids), len(offers))
	}
	// best first
	if !bids[0].Price.Equal(dec("10.5")) || bids[0].Size != 3 {
		t.Errorf("got best bid: %v", bids[0])
	}
	if !bids[1].Price.Equal(dec("10")) || bids[1].Size != 5 {
		t.Errorf("got second bid: %v", bids[1])
	}
	if !offers[0].Price.Equal(dec("11")) || offers[0].Size != 4 {
		t.Errorf("got best offer: %v", offers[0])
	}

	got, err := ex.Format("AAPL", 1)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if got != "10.5x3 : 11x4" {
		t.Errorf("got format: %q", got)
	}
	if _, err := ex.Format("AAPL", 0); !errors.Is(err, ErrInvalidDepth) {
		t.Errorf("expected ErrInvalidDepth, got: %v", err)
	}
}

func TestExchangeConcurrentTickers(t *testing.T) {
	ex := NewExchange(DefaultPlugins...)

	const perTicker = 50
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		ticker := fmt.Sprintf("SYM%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perTicker; j++ {
				_, _, _, err := ex.AddOrder(ticker, SideBuy, dec("10"), 1, StyleLimit)
				if err != nil {
					t.Errorf("add on %s failed: %v", ticker, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		ticker := fmt.Sprintf("SYM%d", i)
		if got := ex.OrderCount(ticker); got != perTicker {
			t.Errorf("got %d orders on %s, want %d", got, ticker, perTicker)
		}
	}
}

func mustAddEx(t *testing.T, ex *Exchange, ticker string, side Side, price string, size int64) int64 {
	t.Helper()
	id, _, _, err := ex.AddOrder(ticker, side, dec(price), size, StyleLimit)
	if err != nil {
		t.Fatalf("add order failed: %v", err)
	}
	return id
}
