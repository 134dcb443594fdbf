package engine

import (
	"github.com/shopspring/decimal"
)

// ImmediateOrCancelPlugin implements immediate-or-cancel orders: whatever
// cannot be executed by the triggering match pass is cancelled.
//
// Resting immediate-or-cancel orders are pruned on insertion: a new one at a
// worse price than those already resting on its side can never improve
// execution and is rejected outright, while a new one at a better price
// supersedes the stale ones, which are cancelled. After any match attempt,
// immediate-or-cancel orders left at a best level are purged even if never
// touched.
type ImmediateOrCancelPlugin struct {
	NopPlugin
	book    *Book
	resting map[Side]*Level
}

func NewImmediateOrCancelPlugin(book *Book) Plugin {
	return &ImmediateOrCancelPlugin{
		book:    book,
		resting: make(map[Side]*Level),
	}
}

func (p *ImmediateOrCancelPlugin) ValidStyles() []Style {
	return []Style{StyleImmediateOrCancel}
}

func (p *ImmediateOrCancelPlugin) PreCreate(side Side, price decimal.Decimal, style Style) bool {
	if style != StyleImmediateOrCancel {
		return true
	}
	level, ok := p.resting[side]
	if !ok {
		return true
	}
	if side == SideBuy {
		return price.GreaterThanOrEqual(level.Price)
	}
	return price.LessThanOrEqual(level.Price)
}

func (p *ImmediateOrCancelPlugin) PostCreate(order *Order) []*Order {
	if order.Style != StyleImmediateOrCancel {
		return nil
	}
	level, ok := p.resting[order.Side]
	if !ok {
		p.resting[order.Side] = NewLevel(order)
		return nil
	}
	if order.Price.Equal(level.Price) {
		// Appending cannot fail: the level was keyed on this price.
		_ = level.Append(order)
		return nil
	}
	// PreCreate already rejected worse prices, so the cached orders are
	// at a worse price than the new one and can never fill first.
	stale := level.Orders()
	p.resting[order.Side] = NewLevel(order)
	return stale
}

func (p *ImmediateOrCancelPlugin) PostDelete(order *Order) {
	level, ok := p.resting[order.Side]
	if !ok || !level.Contains(order.ID) {
		return
	}
	_ = level.Cancel(order.ID)
	if level.Len() == 0 {
		delete(p.resting, order.Side)
	}
}

func (p *ImmediateOrCancelPlugin) PostMatch() []*Order {
	isIOC := func(o *Order) bool { return o.Style == StyleImmediateOrCancel }

	var cancels []*Order
	if best, ok := p.book.Bids().Best(); ok {
		cancels = append(cancels, best.FindAll(isIOC)...)
	}
	if best, ok := p.book.Offers().Best(); ok {
		cancels = append(cancels, best.FindAll(isIOC)...)
	}
	return cancels
}
