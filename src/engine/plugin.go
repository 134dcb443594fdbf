package engine

import (
	"github.com/shopspring/decimal"
)

// Plugin extends the order lifecycle with style-specific behaviour. Hooks
// are invoked by the book at fixed points, in plugin registration order;
// plugins never call back into the lifecycle themselves. Every hook has a
// no-op default available by embedding NopPlugin.
type Plugin interface {
	// ValidStyles lists the order styles the plugin takes responsibility
	// for. The book rejects styles no plugin supports.
	ValidStyles() []Style

	// PreCreate is called before order registration. Returning false
	// rejects the order outright with no side effects.
	PreCreate(side Side, price decimal.Decimal, style Style) bool

	// PostCreate is called after registration, before book insertion and
	// matching. Returned orders are cancelled as a consequence of the new
	// order entering the book.
	PostCreate(order *Order) []*Order

	// PostDelete is called after an order leaves the book, letting the
	// plugin evict any private bookkeeping.
	PostDelete(order *Order)

	// PreFill is called before each trade inside the matching loop.
	// Returned orders are cancelled instead of trading this step.
	PreFill(aggressor *Order) []*Order

	// PostMatch is called after a price level has been drained. Returned
	// orders are cancelled as cleanup.
	PostMatch() []*Order
}

// PluginFactory builds a plugin bound to a book.
type PluginFactory func(*Book) Plugin

// DefaultPlugins is the standard plugin set, consulted in this order.
var DefaultPlugins = []PluginFactory{
	NewFillOrKillPlugin,
	NewImmediateOrCancelPlugin,
	NewBookOrCancelPlugin,
}

// NopPlugin provides default no-op hook implementations.
type NopPlugin struct{}

func (NopPlugin) PreCreate(Side, decimal.Decimal, Style) bool { return true }
func (NopPlugin) PostCreate(*Order) []*Order                  { return nil }
func (NopPlugin) PostDelete(*Order)                           {}
func (NopPlugin) PreFill(*Order) []*Order                     { return nil }
func (NopPlugin) PostMatch() []*Order                         { return nil }
