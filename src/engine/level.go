package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Level aggregates the resting orders at one exact price in arrival order.
// The head of the queue is the oldest order and has the highest matching
// priority. A level with no orders is invalid and must be removed from its
// side immediately.
type Level struct {
	Price  decimal.Decimal
	orders []*Order
}

func NewLevel(order *Order) *Level {
	return &Level{Price: order.Price, orders: []*Order{order}}
}

// Append adds an order to the tail of the queue. All orders in a level share
// exactly the same price.
func (l *Level) Append(order *Order) error {
	if !order.Price.Equal(l.Price) {
		return invariantErrorf(
			"order %d at %s appended to level at %s",
			order.ID, order.Price, l.Price,
		)
	}
	l.orders = append(l.orders, order)
	return nil
}

func (l *Level) Len() int {
	return len(l.orders)
}

// Size is the total resting size at this price, derived from the orders.
func (l *Level) Size() int64 {
	var size int64
	for _, order := range l.orders {
		size += order.Size
	}
	return size
}

// First returns the head order, or nil when the level is empty.
func (l *Level) First() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

// DeleteFirst removes the head order, advancing time priority to the next.
func (l *Level) DeleteFirst() {
	if len(l.orders) > 0 {
		l.orders = l.orders[1:]
	}
}

func (l *Level) Contains(orderID int64) bool {
	return l.indexOf(orderID) != -1
}

// Orders returns a copy of the queue in time priority order.
func (l *Level) Orders() []*Order {
	orders := make([]*Order, len(l.orders))
	copy(orders, l.orders)
	return orders
}

// FindAll returns the orders satisfying the predicate, in time priority order.
func (l *Level) FindAll(predicate func(*Order) bool) []*Order {
	var found []*Order
	for _, order := range l.orders {
		if predicate(order) {
			found = append(found, order)
		}
	}
	return found
}

// ChangeSize amends the size of an order in place. The price and side of a
// resting order can never change; that would let a stale order jump the
// queue.
func (l *Level) ChangeSize(orderID int64, size int64) error {
	if size <= 0 {
		return ErrInvalidSize
	}
	index := l.indexOf(orderID)
	if index == -1 {
		return ErrOrderNotFound
	}
	l.orders[index].Size = size
	return nil
}

// Cancel removes an order from the queue.
func (l *Level) Cancel(orderID int64) error {
	index := l.indexOf(orderID)
	if index == -1 {
		return ErrOrderNotFound
	}
	l.orders = append(l.orders[:index], l.orders[index+1:]...)
	return nil
}

func (l *Level) indexOf(orderID int64) int {
	// Linear scan; realistic per-level depth keeps this cheap.
	for i, order := range l.orders {
		if order.ID == orderID {
			return i
		}
	}
	return -1
}

func (l *Level) String() string {
	return fmt.Sprintf("%sx%d", l.Price, l.Size())
}

func formatLevels(levels []*Level) string {
	parts := make([]string, len(levels))
	for i, level := range levels {
		parts[i] = level.String()
	}
	return strings.Join(parts, ",")
}
