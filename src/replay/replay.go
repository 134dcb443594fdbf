// Package replay ingests historical order book data in fixed-column CSV
// form: event message streams and per-row book snapshots. Prices are
// integer ticks divided by a scale, parsed into exact decimals. Messages
// are fed through the normal exchange surface.
package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"matchbook/src/engine"
)

// DefaultPriceScale is the tick scale of the historical feeds: price
// columns carry integer ticks of 1/10000.
const DefaultPriceScale = 10000

type EventType int

const (
	EventSubmit         EventType = 1 // submission of a new limit order
	EventCancel         EventType = 2 // partial cancellation of a limit order
	EventDelete         EventType = 3 // total deletion of a limit order
	EventExecuteVisible EventType = 4
	EventExecuteHidden  EventType = 5
	EventCross          EventType = 6
	EventHalt           EventType = 7
)

// Message is one historical order book event:
// time,event_type,order_id,size,price,side.
type Message struct {
	Time    float64
	Event   EventType
	OrderID int64
	Size    int64
	Price   decimal.Decimal
	Side    engine.Side
}

// ReadMessages parses a message stream. Scale divides the integer price
// ticks; a non-positive scale uses DefaultPriceScale. A malformed row aborts
// with a row-numbered error.
func ReadMessages(r io.Reader, scale int64) ([]Message, error) {
	if scale <= 0 {
		scale = DefaultPriceScale
	}
	divisor := decimal.NewFromInt(scale)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 6

	var messages []Message
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		message, err := parseMessage(record, divisor)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func parseMessage(record []string, divisor decimal.Decimal) (Message, error) {
	time, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return Message{}, fmt.Errorf("time: %w", err)
	}
	event, err := strconv.Atoi(record[1])
	if err != nil {
		return Message{}, fmt.Errorf("event type: %w", err)
	}
	if event < int(EventSubmit) || event > int(EventHalt) {
		return Message{}, fmt.Errorf("event type out of range: %d", event)
	}
	orderID, err := strconv.ParseInt(record[2], 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("order id: %w", err)
	}
	size, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return Message{}, fmt.Errorf("size: %w", err)
	}
	ticks, err := decimal.NewFromString(record[4])
	if err != nil {
		return Message{}, fmt.Errorf("price: %w", err)
	}
	side, err := strconv.Atoi(record[5])
	if err != nil || (side != 1 && side != -1) {
		return Message{}, fmt.Errorf("side: %q", record[5])
	}
	return Message{
		Time:    time,
		Event:   EventType(event),
		OrderID: orderID,
		Size:    size,
		Price:   ticks.Div(divisor),
		Side:    engine.Side(side),
	}, nil
}

// Stats summarises a replay run.
type Stats struct {
	Submitted int
	Amended   int
	Cancelled int
	Fills     int
	Skipped   int
}

// Replay feeds a message stream into one ticker's book through the exchange
// surface. File order ids are mapped to engine-assigned ids; events naming
// ids the book no longer holds (filled or already deleted) are skipped and
// counted rather than treated as failures, since executions in the feed also
// play out through matching here.
func Replay(ex *engine.Exchange, ticker string, r io.Reader, scale int64) (Stats, error) {
	messages, err := ReadMessages(r, scale)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	ids := make(map[int64]int64)
	for _, message := range messages {
		switch message.Event {
		case EventSubmit:
			orderID, fills, _, err := ex.AddOrder(
				ticker, message.Side, message.Price, message.Size, engine.StyleLimit,
			)
			if err != nil {
				return stats, fmt.Errorf("submit order %d: %w", message.OrderID, err)
			}
			if orderID != 0 {
				ids[message.OrderID] = orderID
			}
			stats.Submitted++
			stats.Fills += len(fills)

		case EventCancel:
			// A partial cancel carries the size removed; the
			// remainder keeps its time priority.
			orderID, ok := ids[message.OrderID]
			if !ok {
				stats.Skipped++
				continue
			}
			order, live := ex.Order(ticker, orderID)
			if !live {
				stats.Skipped++
				continue
			}
			remaining := order.Size - message.Size
			if remaining > 0 {
				err = ex.AmendOrder(ticker, orderID, remaining)
			} else {
				err = ex.CancelOrder(ticker, orderID)
			}
			if err != nil {
				return stats, fmt.Errorf("cancel order %d: %w", message.OrderID, err)
			}
			stats.Amended++

		case EventDelete:
			orderID, ok := ids[message.OrderID]
			if !ok {
				stats.Skipped++
				continue
			}
			if err := ex.CancelOrder(ticker, orderID); err != nil {
				if errors.Is(err, engine.ErrOrderNotFound) {
					stats.Skipped++
					continue
				}
				return stats, fmt.Errorf("delete order %d: %w", message.OrderID, err)
			}
			delete(ids, message.OrderID)
			stats.Cancelled++

		default:
			// Executions, crosses and halts are outcomes of the
			// venue's own matching; the book reproduces executions
			// itself, so these rows carry no new instruction.
			stats.Skipped++
		}
	}

	log.Info().
		Str("ticker", ticker).
		Int("submitted", stats.Submitted).
		Int("amended", stats.Amended).
		Int("cancelled", stats.Cancelled).
		Int("fills", stats.Fills).
		Int("skipped", stats.Skipped).
		Msg("Replay complete")

	return stats, nil
}
