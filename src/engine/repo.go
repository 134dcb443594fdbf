package engine

import (
	"github.com/shopspring/decimal"
)

// orderRepo owns the id to order mapping and order id allocation. An order
// is present here exactly while it rests somewhere in the book (regular or
// stop side); deletions here and in the book sides go together.
type orderRepo struct {
	orders map[int64]*Order
	nextID int64
}

func newOrderRepo() *orderRepo {
	return &orderRepo{
		orders: make(map[int64]*Order),
		nextID: 1,
	}
}

// create allocates the next order id and registers a new order. Ids are
// monotonically increasing and never reused.
func (r *orderRepo) create(side Side, price decimal.Decimal, size int64, style Style) *Order {
	order := &Order{
		ID:    r.nextID,
		Side:  side,
		Price: price,
		Size:  size,
		Style: style,
	}
	r.orders[order.ID] = order
	r.nextID++
	return order
}

func (r *orderRepo) find(orderID int64) (*Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (r *orderRepo) contains(orderID int64) bool {
	_, ok := r.orders[orderID]
	return ok
}

func (r *orderRepo) delete(orderID int64) {
	delete(r.orders, orderID)
}

func (r *orderRepo) len() int {
	return len(r.orders)
}
