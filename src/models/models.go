package models

import "github.com/shopspring/decimal"

type SubmitOrderRequest struct {
	Ticker string          `json:"ticker"`
	Side   string          `json:"side"`
	Style  string          `json:"style,omitempty"` // defaults to LIMIT
	Price  decimal.Decimal `json:"price"`
	Size   int64           `json:"size"`
}

type SubmitOrderResponse struct {
	OrderID   int64       `json:"order_id,omitempty"` // absent when rejected
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Fills     []TradeInfo `json:"fills,omitempty"`
	Cancelled []int64     `json:"cancelled,omitempty"` // order ids cancelled as a side effect
}

type TradeInfo struct {
	TradeID     string          `json:"trade_id"`
	BuyOrderID  int64           `json:"buy_order_id"`
	SellOrderID int64           `json:"sell_order_id"`
	Price       decimal.Decimal `json:"price"`
	Size        int64           `json:"size"`
}

type AmendOrderRequest struct {
	Ticker string `json:"ticker"`
	Size   int64  `json:"size"`
}

type AmendOrderResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type CancelOrderResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OrderBookResponse struct {
	Ticker    string           `json:"ticker"`
	Timestamp int64            `json:"timestamp"` // unix timestamp in milliseconds
	Bids      []PriceLevelInfo `json:"bids"`      // best first (highest price)
	Offers    []PriceLevelInfo `json:"offers"`    // best first (lowest price)
}

type PriceLevelInfo struct {
	Price decimal.Decimal `json:"price"`
	Size  int64           `json:"size"` // aggregated size at this price
}

type RenderResponse struct {
	Ticker string `json:"ticker"`
	Book   string `json:"book"` // canonical "bids : offers" rendering
}

type OrderStatusResponse struct {
	OrderID int64           `json:"order_id"`
	Ticker  string          `json:"ticker"`
	Side    string          `json:"side"`
	Style   string          `json:"style"`
	Price   decimal.Decimal `json:"price"`
	Size    int64           `json:"size"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	RestingOrders int64  `json:"resting_orders"`
}

type MetricsResponse struct {
	OrdersReceived         int64   `json:"orders_received"`
	OrdersRejected         int64   `json:"orders_rejected"`
	OrdersCancelled        int64   `json:"orders_cancelled"`
	OrdersInBook           int64   `json:"orders_in_book"`
	TradesExecuted         int64   `json:"trades_executed"`
	LatencyP50Ms           float64 `json:"latency_p50_ms"`
	LatencyP99Ms           float64 `json:"latency_p99_ms"`
	ThroughputOrdersPerSec float64 `json:"throughput_orders_per_sec"`
}
