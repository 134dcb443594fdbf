package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fill is a completed trade between a bid and an offer. Fills are produced
// by the matching loop and never mutated.
type Fill struct {
	BuyOrderID  int64
	SellOrderID int64
	Price       decimal.Decimal
	Size        int64
}

// Equal compares fills with exact decimal price comparison.
func (f Fill) Equal(other Fill) bool {
	return f.BuyOrderID == other.BuyOrderID &&
		f.SellOrderID == other.SellOrderID &&
		f.Price.Equal(other.Price) &&
		f.Size == other.Size
}

func (f Fill) String() string {
	return fmt.Sprintf("%d@%s", f.Size, f.Price)
}
