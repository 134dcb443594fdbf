package engine

// FillOrKillPlugin implements fill-or-kill orders: an order that cannot be
// completely filled must be cancelled rather than trade partially.
//
// The pre-fill hook compares the two head orders about to trade; a
// fill-or-kill head larger than the opposing head can never fill in full at
// this step and is cancelled. The older order is examined first so that
// cancellations stay time weighted.
type FillOrKillPlugin struct {
	NopPlugin
	book *Book
}

func NewFillOrKillPlugin(book *Book) Plugin {
	return &FillOrKillPlugin{book: book}
}

func (p *FillOrKillPlugin) ValidStyles() []Style {
	return []Style{StyleFillOrKill}
}

func (p *FillOrKillPlugin) PreFill(aggressor *Order) []*Order {
	bids, _ := p.book.Bids().Best()
	offers, _ := p.book.Offers().Best()
	if bids == nil || offers == nil {
		return nil
	}
	bid, offer := bids.First(), offers.First()
	if bid == nil || offer == nil {
		return nil
	}

	older, newer := bid, offer
	if offer.ID < bid.ID {
		older, newer = offer, bid
	}
	if shouldKill(older, newer) {
		return []*Order{older}
	}
	if shouldKill(newer, older) {
		return []*Order{newer}
	}
	return nil
}

func shouldKill(order, opposing *Order) bool {
	return order.Style == StyleFillOrKill && order.Size > opposing.Size
}
