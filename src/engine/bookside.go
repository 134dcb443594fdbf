package engine

import (
	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

const btreeDegree = 32

// BookSide holds the price levels for one side of the book, sorted so that
// the best level (highest price for bids, lowest for offers) is always at
// tree minimum and reachable in O(log n).
type BookSide struct {
	side   Side
	levels *btree.BTreeG[*Level]
}

func NewBookSide(side Side) *BookSide {
	return newBookSide(side, side == SideBuy)
}

// newBookSide builds a side with an explicit ordering. Regular bids keep the
// highest price best; stop shadow sides invert this so the most easily
// triggered stop is best.
func newBookSide(side Side, bestHigh bool) *BookSide {
	var less btree.LessFunc[*Level]
	if bestHigh {
		less = func(a, b *Level) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		less = func(a, b *Level) bool { return a.Price.LessThan(b.Price) }
	}
	return &BookSide{side: side, levels: btree.NewG(btreeDegree, less)}
}

func (s *BookSide) Side() Side {
	return s.side
}

// Len is the number of price levels on the side.
func (s *BookSide) Len() int {
	return s.levels.Len()
}

// Best returns the extremal level for the side's direction.
func (s *BookSide) Best() (*Level, bool) {
	return s.levels.Min()
}

// DeleteBest removes the extremal level.
func (s *BookSide) DeleteBest() {
	s.levels.DeleteMin()
}

// Level returns the level at an exact price, if present.
func (s *BookSide) Level(price decimal.Decimal) (*Level, bool) {
	return s.levels.Get(&Level{Price: price})
}

// Add inserts an order, appending to an existing level at its price or
// creating a new level in sorted position.
func (s *BookSide) Add(order *Order) error {
	if level, ok := s.Level(order.Price); ok {
		return level.Append(order)
	}
	s.levels.ReplaceOrInsert(NewLevel(order))
	return nil
}

// Amend changes the size of a resting order. The level must exist: resting
// orders never change price, so a missing level is book corruption.
func (s *BookSide) Amend(order *Order, size int64) error {
	level, ok := s.Level(order.Price)
	if !ok {
		return invariantErrorf(
			"no %s level at %s for order %d", s.side, order.Price, order.ID,
		)
	}
	return level.ChangeSize(order.ID, size)
}

// Cancel removes a resting order, deleting its level if it empties.
func (s *BookSide) Cancel(order *Order) error {
	level, ok := s.Level(order.Price)
	if !ok {
		return invariantErrorf(
			"no %s level at %s for order %d", s.side, order.Price, order.ID,
		)
	}
	if err := level.Cancel(order.ID); err != nil {
		return err
	}
	if level.Len() == 0 {
		s.levels.Delete(level)
	}
	return nil
}

// deleteIfEmpty removes a level that has been drained by matching.
func (s *BookSide) deleteIfEmpty(level *Level) {
	if level.Len() == 0 {
		s.levels.Delete(level)
	}
}

// Depth returns the best levels of the side, best first. A non-positive
// count returns the full depth.
func (s *BookSide) Depth(levels int) []*Level {
	if levels <= 0 || levels > s.levels.Len() {
		levels = s.levels.Len()
	}
	depth := make([]*Level, 0, levels)
	s.levels.Ascend(func(level *Level) bool {
		if len(depth) == levels {
			return false
		}
		depth = append(depth, level)
		return true
	})
	return depth
}
