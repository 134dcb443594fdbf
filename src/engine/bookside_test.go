package engine

import (
	"errors"
	"testing"
)

func addToSide(t *testing.T, side *BookSide, order *Order) {
	t.Helper()
	if err := side.Add(order); err != nil {
		t.Fatalf("add failed: %v", err)
	}
}

func TestBookSideBestIsExtremum(t *testing.T) {
	bids := NewBookSide(SideBuy)
	addToSide(t, bids, &Order{ID: 1, Side: SideBuy, Price: dec("10.1"), Size: 5})
	addToSide(t, bids, &Order{ID: 2, Side: SideBuy, Price: dec("10.3"), Size: 5})
	addToSide(t, bids, &Order{ID: 3, Side: SideBuy, Price: dec("10.2"), Size: 5})

	best, ok := bids.Best()
	if !ok || !best.Price.Equal(dec("10.3")) {
		t.Fatalf("expected best bid 10.3, got: %v", best)
	}

	// removing best restores the extremum property for the remainder
	bids.DeleteBest()
	best, ok = bids.Best()
	if !ok || !best.Price.Equal(dec("10.2")) {
		t.Fatalf("expected best bid 10.2 after delete, got: %v", best)
	}

	offers := NewBookSide(SideSell)
	addToSide(t, offers, &Order{ID: 4, Side: SideSell, Price: dec("11.2"), Size: 5})
	addToSide(t, offers, &Order{ID: 5, Side: SideSell, Price: dec("11.1"), Size: 5})

	best, ok = offers.Best()
	if !ok || !best.Price.Equal(dec("11.1")) {
		t.Fatalf("expected best offer 11.1, got: %v", best)
	}
}

func TestBookSideAddAggregatesSamePrice(t *testing.T) {
	bids := NewBookSide(SideBuy)
	addToSide(t, bids, &Order{ID: 1, Side: SideBuy, Price: dec("10.5"), Size: 10})
	addToSide(t, bids, &Order{ID: 2, Side: SideBuy, Price: dec("10.5"), Size: 5})

	if bids.Len() != 1 {
		t.Fatalf("expected a single level, got: %d", bids.Len())
	}
	level, _ := bids.Best()
	if level.Size() != 15 {
		t.Errorf("expected aggregated size 15, got: %d", level.Size())
	}
	if level.First().ID != 1 {
		t.Errorf("expected time priority preserved, head id: %d", level.First().ID)
	}
}

func TestBookSideCancelRemovesEmptyLevel(t *testing.T) {
	bids := NewBookSide(SideBuy)
	order := &Order{ID: 1, Side: SideBuy, Price: dec("10.5"), Size: 10}
	addToSide(t, bids, order)

	if err := bids.Cancel(order); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if bids.Len() != 0 {
		t.Errorf("expected the emptied level removed, levels: %d", bids.Len())
	}
}

func TestBookSideAmendMissingLevelIsInvariantViolation(t *testing.T) {
	bids := NewBookSide(SideBuy)
	order := &Order{ID: 1, Side: SideBuy, Price: dec("10.5"), Size: 10}

	var invariant *InvariantError
	if err := bids.Amend(order, 5); !errors.As(err, &invariant) {
		t.Errorf("expected InvariantError, got: %v", err)
	}
	if err := bids.Cancel(order); !errors.As(err, &invariant) {
		t.Errorf("expected InvariantError, got: %v", err)
	}
}

func TestBookSideDepth(t *testing.T) {
	offers := NewBookSide(SideSell)
	addToSide(t, offers, &Order{ID: 1, Side: SideSell, Price: dec("11.2"), Size: 5})
	addToSide(t, offers, &Order{ID: 2, Side: SideSell, Price: dec("11.1"), Size: 5})
	addToSide(t, offers, &Order{ID: 3, Side: SideSell, Price: dec("11.3"), Size: 5})

	depth := offers.Depth(2)
	if len(depth) != 2 {
		t.Fatalf("expected 2 levels, got: %d", len(depth))
	}
	if !depth[0].Price.Equal(dec("11.1")) || !depth[1].Price.Equal(dec("11.2")) {
		t.Errorf("expected best-first depth, got: %v, %v", depth[0], depth[1])
	}

	full := offers.Depth(0)
	if len(full) != 3 {
		t.Errorf("expected full depth for non-positive count, got: %d", len(full))
	}
}
