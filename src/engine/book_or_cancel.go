package engine

// BookOrCancelPlugin implements book-or-cancel orders: an order must rest in
// the book before trading, so one that would fill immediately on entry is
// cancelled instead. The pre-fill hook catches a book-or-cancel head order
// that is itself the aggressor of the current match pass.
type BookOrCancelPlugin struct {
	NopPlugin
	book *Book
}

func NewBookOrCancelPlugin(book *Book) Plugin {
	return &BookOrCancelPlugin{book: book}
}

func (p *BookOrCancelPlugin) ValidStyles() []Style {
	return []Style{StyleBookOrCancel}
}

func (p *BookOrCancelPlugin) PreFill(aggressor *Order) []*Order {
	bids, _ := p.book.Bids().Best()
	offers, _ := p.book.Offers().Best()
	if bids == nil || offers == nil {
		return nil
	}
	if bid := bids.First(); bid != nil &&
		bid.Style == StyleBookOrCancel && bid.ID == aggressor.ID {
		return []*Order{bid}
	}
	if offer := offers.First(); offer != nil &&
		offer.Style == StyleBookOrCancel && offer.ID == aggressor.ID {
		return []*Order{offer}
	}
	return nil
}
