package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Book is a single-instrument matching engine. It owns both book sides, the
// stop shadow sides, the order repo and the style plugins, and matches
// crossing orders in strict price/time priority.
//
// A Book is not safe for concurrent use: every public operation is one
// atomic state transition, and the design assumes one matching thread per
// instrument. Exchange provides the per-instrument lock.
type Book struct {
	repo    *orderRepo
	bids    *BookSide
	offers  *BookSide
	plugins []Plugin
	styles  map[Style]struct{}

	// Stop orders rest in shadow sides until their trigger price is
	// crossed. pendingStops tracks which orders are still dormant.
	stopBids     *BookSide
	stopOffers   *BookSide
	pendingStops map[int64]struct{}
}

// NewBook creates a book with the given style plugins. Vanilla limit orders
// and stop orders are always supported; other styles need a plugin.
func NewBook(factories ...PluginFactory) *Book {
	b := &Book{
		repo:         newOrderRepo(),
		bids:         NewBookSide(SideBuy),
		offers:       NewBookSide(SideSell),
		stopBids:     newBookSide(SideBuy, false),
		stopOffers:   newBookSide(SideSell, true),
		pendingStops: make(map[int64]struct{}),
		styles: map[Style]struct{}{
			StyleLimit: {},
			StyleStop:  {},
		},
	}
	for _, factory := range factories {
		plugin := factory(b)
		b.plugins = append(b.plugins, plugin)
		for _, style := range plugin.ValidStyles() {
			b.styles[style] = struct{}{}
		}
	}
	return b
}

func (b *Book) Bids() *BookSide   { return b.bids }
func (b *Book) Offers() *BookSide { return b.offers }

// OrderCount is the number of live orders, dormant stops included.
func (b *Book) OrderCount() int {
	return b.repo.len()
}

// Order returns a copy of a live order.
func (b *Book) Order(orderID int64) (Order, bool) {
	order, err := b.repo.find(orderID)
	if err != nil {
		return Order{}, false
	}
	return *order, true
}

// AddOrder submits an order to the book. The returned order id is zero when
// a plugin rejected the order, which is a valid outcome rather than an
// error. Fills and the ids of orders cancelled as a side effect are
// returned in the order they occurred.
func (b *Book) AddOrder(
	side Side,
	price decimal.Decimal,
	size int64,
	style Style,
) (orderID int64, fills []Fill, cancelled []int64, err error) {
	if size <= 0 {
		return 0, nil, nil, ErrInvalidSize
	}
	if _, ok := b.styles[style]; !ok {
		return 0, nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStyle, style)
	}

	for _, plugin := range b.plugins {
		if !plugin.PreCreate(side, price, style) {
			return 0, nil, nil, nil
		}
	}

	order := b.repo.create(side, price, size, style)

	// Cascade cancellations decided by plugins run to completion before
	// the order enters the book.
	for _, plugin := range b.plugins {
		for _, stale := range plugin.PostCreate(order) {
			done, cancelErr := b.cancelResting(stale)
			if cancelErr != nil {
				return 0, nil, nil, cancelErr
			}
			if done {
				cancelled = append(cancelled, stale.ID)
			}
		}
	}

	if style == StyleStop {
		// Dormant until triggered; no matching on entry.
		if err := b.stopSide(side).Add(order); err != nil {
			return 0, nil, nil, err
		}
		b.pendingStops[order.ID] = struct{}{}
		return order.ID, nil, cancelled, nil
	}

	if err := b.bookSide(side).Add(order); err != nil {
		return 0, nil, nil, err
	}

	fills, cancelled, err = b.match(order, cancelled)
	if err != nil {
		return 0, nil, nil, err
	}
	return order.ID, fills, cancelled, nil
}

// AmendOrder changes the size of a live order. Amending to zero is invalid;
// use CancelOrder.
func (b *Book) AmendOrder(orderID int64, size int64) error {
	if size <= 0 {
		return ErrInvalidSize
	}
	order, err := b.repo.find(orderID)
	if err != nil {
		return err
	}
	return b.restingSide(order).Amend(order, size)
}

// CancelOrder removes a live order from the book.
func (b *Book) CancelOrder(orderID int64) error {
	order, err := b.repo.find(orderID)
	if err != nil {
		return err
	}
	_, err = b.cancelResting(order)
	return err
}

// cancelResting removes an order from its side and the repo together, then
// runs the post-delete hooks. Cancelling an order a cascade already removed
// is a no-op, reported by the bool.
func (b *Book) cancelResting(order *Order) (bool, error) {
	if !b.repo.contains(order.ID) {
		return false, nil
	}
	if err := b.restingSide(order).Cancel(order); err != nil {
		return false, err
	}
	b.repo.delete(order.ID)
	delete(b.pendingStops, order.ID)
	b.postDelete(order)
	return true, nil
}

// deleteFilled eagerly removes a fully executed head order from the repo and
// its level.
func (b *Book) deleteFilled(order *Order, level *Level) {
	b.repo.delete(order.ID)
	level.DeleteFirst()
	b.postDelete(order)
}

func (b *Book) bookSide(side Side) *BookSide {
	if side == SideBuy {
		return b.bids
	}
	return b.offers
}

func (b *Book) stopSide(side Side) *BookSide {
	if side == SideBuy {
		return b.stopBids
	}
	return b.stopOffers
}

func (b *Book) restingSide(order *Order) *BookSide {
	if _, dormant := b.pendingStops[order.ID]; dormant {
		return b.stopSide(order.Side)
	}
	return b.bookSide(order.Side)
}

// match runs the matching loop with the given aggressor, consulting the
// plugin hooks at each step. Fills print at the aggressor's price when the
// aggressor's limit crosses the opposing best price.
func (b *Book) match(aggressor *Order, cancelled []int64) ([]Fill, []int64, error) {
	var fills []Fill

	fills, err := b.triggerStops(aggressor, fills)
	if err != nil {
		return nil, nil, err
	}

	for b.bids.Len() > 0 && b.offers.Len() > 0 {
		bestBids, _ := b.bids.Best()
		bestOffers, _ := b.offers.Best()
		if bestBids.Price.LessThan(bestOffers.Price) {
			break
		}

		for bestBids.Len() > 0 && bestOffers.Len() > 0 {
			// A plugin may demand cancellations instead of a trade,
			// e.g. a fill-or-kill order that cannot fill in full.
			if cancels := b.preFill(aggressor); len(cancels) > 0 {
				for _, order := range cancels {
					done, err := b.cancelResting(order)
					if err != nil {
						return nil, nil, err
					}
					if done {
						cancelled = append(cancelled, order.ID)
					}
				}
				break
			}

			bid, offer := bestBids.First(), bestOffers.First()

			fillSize := min(bid.Size, offer.Size)
			// In a cross the aggressor's price exceeds rather than
			// matches the opposing best, and the trade prints at
			// the aggressor's price.
			fillPrice := offer.Price
			if bid.ID == aggressor.ID {
				fillPrice = bid.Price
			}
			fills = append(fills, Fill{
				BuyOrderID:  bid.ID,
				SellOrderID: offer.ID,
				Price:       fillPrice,
				Size:        fillSize,
			})

			bid.Size -= fillSize
			if bid.Size == 0 {
				b.deleteFilled(bid, bestBids)
			}
			offer.Size -= fillSize
			if offer.Size == 0 {
				b.deleteFilled(offer, bestOffers)
			}
		}

		// Cleanup demanded by plugins, e.g. unfilled immediate-or-cancel
		// orders left at the best price after a match attempt.
		for _, order := range b.postMatch() {
			done, err := b.cancelResting(order)
			if err != nil {
				return nil, nil, err
			}
			if done {
				cancelled = append(cancelled, order.ID)
			}
		}

		b.bids.deleteIfEmpty(bestBids)
		b.offers.deleteIfEmpty(bestOffers)
	}

	return fills, cancelled, nil
}

// triggerStops activates dormant stops whose trigger the aggressor's price
// crossed. A triggered stop trades against the aggressor's own level first,
// head order first, at the aggressor's price; any remainder converts to a
// normal resting order at the stop price.
func (b *Book) triggerStops(aggressor *Order, fills []Fill) ([]Fill, error) {
	stops := b.stopSide(aggressor.Side.Opposite())
	for stops.Len() > 0 {
		stopLevel, _ := stops.Best()
		if !stopTriggered(aggressor, stopLevel.Price) {
			break
		}

		aggressorLevel, ok := b.bookSide(aggressor.Side).Level(aggressor.Price)
		for ok && stopLevel.Len() > 0 && aggressorLevel.Len() > 0 {
			stop := stopLevel.First()
			resting := aggressorLevel.First()

			fillSize := min(stop.Size, resting.Size)
			fill := Fill{Price: aggressor.Price, Size: fillSize}
			if aggressor.Side == SideBuy {
				fill.BuyOrderID = resting.ID
				fill.SellOrderID = stop.ID
			} else {
				fill.BuyOrderID = stop.ID
				fill.SellOrderID = resting.ID
			}
			fills = append(fills, fill)

			stop.Size -= fillSize
			if stop.Size == 0 {
				delete(b.pendingStops, stop.ID)
				b.deleteFilled(stop, stopLevel)
			}
			resting.Size -= fillSize
			if resting.Size == 0 {
				b.deleteFilled(resting, aggressorLevel)
			}
		}
		if ok {
			b.bookSide(aggressor.Side).deleteIfEmpty(aggressorLevel)
		}

		// Triggered but unfilled stops become normal resting orders.
		for stopLevel.Len() > 0 {
			stop := stopLevel.First()
			stopLevel.DeleteFirst()
			delete(b.pendingStops, stop.ID)
			if err := b.bookSide(stop.Side).Add(stop); err != nil {
				return nil, err
			}
		}
		stops.DeleteBest()
	}
	return fills, nil
}

// stopTriggered reports whether the aggressor's price crosses a stop
// trigger: a sell stop fires when the buying interest drops to its trigger,
// a buy stop when the selling interest rises to it.
func stopTriggered(aggressor *Order, trigger decimal.Decimal) bool {
	if aggressor.Side == SideBuy {
		return aggressor.Price.LessThanOrEqual(trigger)
	}
	return aggressor.Price.GreaterThanOrEqual(trigger)
}

func (b *Book) preFill(aggressor *Order) []*Order {
	var cancels []*Order
	for _, plugin := range b.plugins {
		cancels = append(cancels, plugin.PreFill(aggressor)...)
	}
	return cancels
}

func (b *Book) postMatch() []*Order {
	var cancels []*Order
	for _, plugin := range b.plugins {
		cancels = append(cancels, plugin.PostMatch()...)
	}
	return cancels
}

func (b *Book) postDelete(order *Order) {
	for _, plugin := range b.plugins {
		plugin.PostDelete(order)
	}
}

// Depth returns the best price levels per side, best first, up to the given
// count. A non-positive count returns the full depth. Dormant stops are not
// part of the visible book.
func (b *Book) Depth(levels int) (bids []*Level, offers []*Level) {
	return b.bids.Depth(levels), b.offers.Depth(levels)
}

// Format renders the best levels per side in the canonical
// "bids : offers" form, each level as "{price}x{size}", bids low to high
// and offers low to high. The level count must be positive.
func (b *Book) Format(levels int) (string, error) {
	if levels <= 0 {
		return "", ErrInvalidDepth
	}
	return b.render(levels), nil
}

// String renders the full book depth.
func (b *Book) String() string {
	return b.render(0)
}

func (b *Book) render(levels int) string {
	bids, offers := b.Depth(levels)
	// Bids render in ascending price order, best last.
	for i, j := 0, len(bids)-1; i < j; i, j = i+1, j-1 {
		bids[i], bids[j] = bids[j], bids[i]
	}
	var sb strings.Builder
	sb.WriteString(formatLevels(bids))
	sb.WriteString(" : ")
	sb.WriteString(formatLevels(offers))
	return sb.String()
}
