package engine

import (
	"testing"
)

func TestBookOrCancelRestsThenFills(t *testing.T) {
	book := newTestBook()

	buyID, _, _ := mustAdd(t, book, SideBuy, "11", 5, StyleBookOrCancel)
	sellID, fills, cancels := mustAdd(t, book, SideSell, "11", 5, StyleLimit)

	// the book-or-cancel rested first, so it may trade passively
	assertFills(t, fills, []Fill{
		{BuyOrderID: buyID, SellOrderID: sellID, Price: dec("11"), Size: 5},
	})
	if len(cancels) != 0 {
		t.Errorf("should be no cancels, got: %v", cancels)
	}
	if book.String() != " : " {
		t.Errorf("the order book should be empty, got: %q", book.String())
	}
}

func TestBookOrCancelAggressorIsCancelled(t *testing.T) {
	book := newTestBook()

	mustAdd(t, book, SideSell, "11", 5, StyleLimit)
	bocID, fills, cancels := mustAdd(t, book, SideBuy, "11", 5, StyleBookOrCancel)

	if len(fills) != 0 {
		t.Errorf("a book-or-cancel must not fill on entry, got: %v", fills)
	}
	if len(cancels) != 1 || cancels[0] != bocID {
		t.Errorf("the aggressing book-or-cancel should be cancelled, got: %v", cancels)
	}
	if book.String() != " : 11x5" {
		t.Errorf("the resting sell should survive, got: %q", book.String())
	}
}
