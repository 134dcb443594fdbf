package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = -1
)

func (s Side) Opposite() Side {
	return -s
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", int8(s))
	}
}

// ParseSide converts the wire representation of a side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return 0, fmt.Errorf("invalid side %q", s)
	}
}

type Style int8

const (
	StyleLimit Style = iota
	StyleFillOrKill
	StyleImmediateOrCancel
	StyleBookOrCancel
	StyleStop
)

func (s Style) String() string {
	switch s {
	case StyleLimit:
		return "LIMIT"
	case StyleFillOrKill:
		return "FILL_OR_KILL"
	case StyleImmediateOrCancel:
		return "IMMEDIATE_OR_CANCEL"
	case StyleBookOrCancel:
		return "BOOK_OR_CANCEL"
	case StyleStop:
		return "STOP"
	default:
		return fmt.Sprintf("Style(%d)", int8(s))
	}
}

// ParseStyle converts the wire representation of an order style. The empty
// string maps to LIMIT.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "", "LIMIT":
		return StyleLimit, nil
	case "FILL_OR_KILL":
		return StyleFillOrKill, nil
	case "IMMEDIATE_OR_CANCEL":
		return StyleImmediateOrCancel, nil
	case "BOOK_OR_CANCEL":
		return StyleBookOrCancel, nil
	case "STOP":
		return StyleStop, nil
	default:
		return 0, fmt.Errorf("invalid order style %q", s)
	}
}

// Order is a single resting limit order. The identity fields never change
// once assigned; Size is decremented in place as the order fills. The same
// *Order is shared between the order repo and the price level holding it, so
// a decrement is visible through both at once.
type Order struct {
	ID    int64
	Side  Side
	Price decimal.Decimal
	Size  int64
	Style Style
}

func (o *Order) String() string {
	return fmt.Sprintf("%sx%d", o.Price, o.Size)
}
