package handlers

import (
	"errors"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"matchbook/src/engine"
	"matchbook/src/models"
)

const (
	StatusResting     = "RESTING"
	StatusFilled      = "FILLED"
	StatusPartialFill = "PARTIAL_FILL"
	StatusRejected    = "REJECTED"
	StatusCancelled   = "CANCELLED"
	StatusAmended     = "AMENDED"
)

type OrderHandler struct {
	Exchange        *engine.Exchange
	StartTime       time.Time
	OrdersReceived  int64
	OrdersRejected  int64
	OrdersCancelled int64
	TradesExecuted  int64

	latencies    []time.Duration
	latenciesMu  sync.Mutex
	maxLatencies int
}

func NewOrderHandler(ex *engine.Exchange) *OrderHandler {
	return &OrderHandler{
		Exchange:     ex,
		StartTime:    time.Now(),
		maxLatencies: 10000,
	}
}

func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn().
			Err(err).
			Str("ip", c.IP()).
			Str("path", c.Path()).
			Msg("Invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}

	if req.Ticker == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order: ticker is required",
		})
	}
	side, err := engine.ParseSide(req.Side)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order: side must be BUY or SELL",
		})
	}
	style, err := engine.ParseStyle(req.Style)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order: unknown style",
		})
	}
	if req.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order: size must be positive",
		})
	}
	if req.Price.Sign() <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order: price must be positive",
		})
	}

	atomic.AddInt64(&h.OrdersReceived, 1)
	start := time.Now()

	orderID, fills, cancelled, err := h.Exchange.AddOrder(
		req.Ticker, side, req.Price, req.Size, style,
	)
	h.recordLatency(time.Since(start))

	if err != nil {
		if errors.Is(err, engine.ErrUnsupportedStyle) || errors.Is(err, engine.ErrInvalidSize) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: err.Error(),
			})
		}
		log.Error().
			Err(err).
			Str("ticker", req.Ticker).
			Msg("Error adding order")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Internal server error",
		})
	}

	if orderID == 0 {
		atomic.AddInt64(&h.OrdersRejected, 1)
		log.Info().
			Str("ticker", req.Ticker).
			Str("side", side.String()).
			Str("style", style.String()).
			Str("price", req.Price.String()).
			Msg("Order rejected")
		return c.Status(fiber.StatusOK).JSON(models.SubmitOrderResponse{
			Status:  StatusRejected,
			Message: "Order rejected by style constraints",
		})
	}

	atomic.AddInt64(&h.TradesExecuted, int64(len(fills)))

	trades := make([]models.TradeInfo, 0, len(fills))
	var filled int64
	for _, fill := range fills {
		trades = append(trades, models.TradeInfo{
			TradeID:     uuid.New().String(),
			BuyOrderID:  fill.BuyOrderID,
			SellOrderID: fill.SellOrderID,
			Price:       fill.Price,
			Size:        fill.Size,
		})
		if fill.BuyOrderID == orderID || fill.SellOrderID == orderID {
			filled += fill.Size
		}
	}

	status := orderStatus(orderID, filled, req.Size, cancelled)
	response := models.SubmitOrderResponse{
		OrderID:   orderID,
		Status:    status,
		Fills:     trades,
		Cancelled: cancelled,
	}

	log.Info().
		Int64("order_id", orderID).
		Str("ticker", req.Ticker).
		Str("side", side.String()).
		Str("style", style.String()).
		Str("price", req.Price.String()).
		Int64("size", req.Size).
		Str("status", status).
		Int("fills", len(fills)).
		Int("cancelled", len(cancelled)).
		Msg("Order processed")

	switch status {
	case StatusResting:
		return c.Status(fiber.StatusCreated).JSON(response)
	case StatusPartialFill:
		return c.Status(fiber.StatusAccepted).JSON(response)
	default:
		return c.Status(fiber.StatusOK).JSON(response)
	}
}

func orderStatus(orderID, filled, size int64, cancelled []int64) string {
	for _, id := range cancelled {
		if id == orderID {
			return StatusCancelled
		}
	}
	switch {
	case filled == 0:
		return StatusResting
	case filled < size:
		return StatusPartialFill
	default:
		return StatusFilled
	}
}

func (h *OrderHandler) AmendOrder(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order id",
		})
	}

	var req models.AmendOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request: malformed JSON",
		})
	}
	if req.Ticker == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid amend: ticker is required",
		})
	}

	if err := h.Exchange.AmendOrder(req.Ticker, orderID, req.Size); err != nil {
		return h.orderError(c, orderID, "Amend order", err)
	}

	log.Info().
		Int64("order_id", orderID).
		Str("ticker", req.Ticker).
		Int64("size", req.Size).
		Msg("Order amended")

	return c.Status(fiber.StatusOK).JSON(models.AmendOrderResponse{
		OrderID: orderID,
		Status:  StatusAmended,
	})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order id",
		})
	}
	ticker := c.Query("ticker")
	if ticker == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid cancel: ticker is required",
		})
	}

	if err := h.Exchange.CancelOrder(ticker, orderID); err != nil {
		return h.orderError(c, orderID, "Cancel order", err)
	}

	atomic.AddInt64(&h.OrdersCancelled, 1)

	log.Info().
		Int64("order_id", orderID).
		Str("ticker", ticker).
		Str("ip", c.IP()).
		Msg("Order cancelled")

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{
		OrderID: orderID,
		Status:  StatusCancelled,
	})
}

func (h *OrderHandler) orderError(c *fiber.Ctx, orderID int64, action string, err error) error {
	if errors.Is(err, engine.ErrOrderNotFound) {
		log.Warn().
			Int64("order_id", orderID).
			Str("ip", c.IP()).
			Msg(action + ": order not found")
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found",
		})
	}
	if errors.Is(err, engine.ErrInvalidSize) {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Size must be positive; use cancel to remove an order",
		})
	}
	log.Error().Err(err).Int64("order_id", orderID).Msg(action + " failed")
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "Internal server error",
	})
}

func (h *OrderHandler) GetOrderStatus(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid order id",
		})
	}
	ticker := c.Query("ticker")
	if ticker == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid query: ticker is required",
		})
	}

	order, ok := h.Exchange.Order(ticker, orderID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "Order not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(models.OrderStatusResponse{
		OrderID: order.ID,
		Ticker:  ticker,
		Side:    order.Side.String(),
		Style:   order.Style.String(),
		Price:   order.Price,
		Size:    order.Size,
	})
}

func (h *OrderHandler) GetOrderBook(c *fiber.Ctx) error {
	ticker := c.Params("ticker")

	depth := 10
	if depthStr := c.Query("depth"); depthStr != "" {
		parsed, err := strconv.Atoi(depthStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Invalid depth: must be a positive integer",
			})
		}
		depth = parsed
	}

	bids, offers := h.Exchange.Depth(ticker, depth)

	return c.Status(fiber.StatusOK).JSON(models.OrderBookResponse{
		Ticker:    ticker,
		Timestamp: time.Now().UnixMilli(),
		Bids:      levelInfos(bids),
		Offers:    levelInfos(offers),
	})
}

func (h *OrderHandler) RenderOrderBook(c *fiber.Ctx) error {
	ticker := c.Params("ticker")

	var rendered string
	if levelsStr := c.Query("levels"); levelsStr != "" {
		levels, err := strconv.Atoi(levelsStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Invalid levels: must be an integer",
			})
		}
		rendered, err = h.Exchange.Format(ticker, levels)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "Invalid levels: must be greater than zero",
			})
		}
	} else {
		rendered = h.Exchange.Render(ticker)
	}

	return c.Status(fiber.StatusOK).JSON(models.RenderResponse{
		Ticker: ticker,
		Book:   rendered,
	})
}

func levelInfos(levels []engine.LevelSnapshot) []models.PriceLevelInfo {
	infos := make([]models.PriceLevelInfo, 0, len(levels))
	for _, level := range levels {
		infos = append(infos, models.PriceLevelInfo{
			Price: level.Price,
			Size:  level.Size,
		})
	}
	return infos
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.StartTime).Seconds()),
		RestingOrders: h.restingOrders(),
	})
}

func (h *OrderHandler) Metrics(c *fiber.Ctx) error {
	p50, p99 := h.latencyPercentiles()

	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		OrdersReceived:         atomic.LoadInt64(&h.OrdersReceived),
		OrdersRejected:         atomic.LoadInt64(&h.OrdersRejected),
		OrdersCancelled:        atomic.LoadInt64(&h.OrdersCancelled),
		OrdersInBook:           h.restingOrders(),
		TradesExecuted:         atomic.LoadInt64(&h.TradesExecuted),
		LatencyP50Ms:           p50,
		LatencyP99Ms:           p99,
		ThroughputOrdersPerSec: h.throughput(),
	})
}

func (h *OrderHandler) restingOrders() int64 {
	var resting int64
	for _, ticker := range h.Exchange.Tickers() {
		resting += int64(h.Exchange.OrderCount(ticker))
	}
	return resting
}

func (h *OrderHandler) recordLatency(latency time.Duration) {
	h.latenciesMu.Lock()
	defer h.latenciesMu.Unlock()

	h.latencies = append(h.latencies, latency)
	// edge case: maintain rolling window by removing oldest measurements
	if len(h.latencies) > h.maxLatencies {
		h.latencies = h.latencies[len(h.latencies)-h.maxLatencies:]
	}
}

func (h *OrderHandler) latencyPercentiles() (p50, p99 float64) {
	h.latenciesMu.Lock()
	defer h.latenciesMu.Unlock()

	if len(h.latencies) == 0 {
		return 0, 0
	}

	sorted := make([]time.Duration, len(h.latencies))
	copy(sorted, h.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	at := func(q float64) float64 {
		index := int(float64(len(sorted)) * q)
		if index >= len(sorted) {
			index = len(sorted) - 1
		}
		return float64(sorted[index].Nanoseconds()) / 1e6
	}
	return at(0.50), at(0.99)
}

func (h *OrderHandler) throughput() float64 {
	uptime := time.Since(h.StartTime).Seconds()
	if uptime <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&h.OrdersReceived)) / uptime
}
