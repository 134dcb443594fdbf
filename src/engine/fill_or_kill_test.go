package engine

import (
	"testing"
)

func TestFillOrKillBuyFills(t *testing.T) {
	book := newTestBook()

	mustAdd(t, book, SideBuy, "10", 5, StyleLimit)
	buyID, _, _ := mustAdd(t, book, SideBuy, "11", 5, StyleFillOrKill)
	sellID, fills, cancels := mustAdd(t, book, SideSell, "11", 15, StyleLimit)

	assertFills(t, fills, []Fill{
		{BuyOrderID: buyID, SellOrderID: sellID, Price: dec("11"), Size: 5},
	})
	if len(cancels) != 0 {
		t.Errorf("should be no cancels, got: %v", cancels)
	}
	if book.String() != "10x5 : 11x10" {
		t.Errorf("unexpected book: %q", book.String())
	}

	// a fill-or-kill too large for the opposing head is killed
	fokID, fills, cancels := mustAdd(t, book, SideBuy, "11", 15, StyleFillOrKill)
	if len(fills) != 0 {
		t.Errorf("should be no fills, got: %v", fills)
	}
	if len(cancels) != 1 || cancels[0] != fokID {
		t.Errorf("fill-or-kill should be cancelled, got: %v", cancels)
	}
}

func TestFillOrKillSellFills(t *testing.T) {
	book := newTestBook()

	mustAdd(t, book, SideSell, "11", 5, StyleLimit)
	sellID, _, _ := mustAdd(t, book, SideSell, "10", 5, StyleFillOrKill)
	buyID, fills, cancels := mustAdd(t, book, SideBuy, "10", 15, StyleLimit)

	assertFills(t, fills, []Fill{
		{BuyOrderID: buyID, SellOrderID: sellID, Price: dec("10"), Size: 5},
	})
	if len(cancels) != 0 {
		t.Errorf("should be no cancels, got: %v", cancels)
	}
	if book.String() != "10x10 : 11x5" {
		t.Errorf("unexpected book: %q", book.String())
	}
}

func TestFillOrKillCancelsBuysInTimeOrder(t *testing.T) {
	book := newTestBook()

	buy1, _, _ := mustAdd(t, book, SideBuy, "11", 10, StyleFillOrKill)
	buy2, _, _ := mustAdd(t, book, SideBuy, "11", 10, StyleFillOrKill)
	// too small to fill either fill-or-kill in full
	_, fills, cancels := mustAdd(t, book, SideSell, "10", 5, StyleLimit)

	if len(fills) != 0 {
		t.Errorf("should not fill, got: %v", fills)
	}
	if len(cancels) != 2 || cancels[0] != buy1 || cancels[1] != buy2 {
		t.Errorf("should cancel in arrival order, got: %v", cancels)
	}
	if book.String() != " : 10x5" {
		t.Errorf("the sell should rest, got: %q", book.String())
	}
}

func TestFillOrKillCancelsSellsInTimeOrder(t *testing.T) {
	book := newTestBook()

	sell1, _, _ := mustAdd(t, book, SideSell, "10", 10, StyleFillOrKill)
	sell2, _, _ := mustAdd(t, book, SideSell, "10", 10, StyleFillOrKill)
	_, fills, cancels := mustAdd(t, book, SideBuy, "11", 5, StyleLimit)

	if len(fills) != 0 {
		t.Errorf("should not fill, got: %v", fills)
	}
	if len(cancels) != 2 || cancels[0] != sell1 || cancels[1] != sell2 {
		t.Errorf("should cancel in arrival order, got: %v", cancels)
	}
}
