package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"matchbook/src/engine"
)

// SnapshotLevel is one aggregated price level from a historical snapshot.
type SnapshotLevel struct {
	Price decimal.Decimal
	Size  int64
}

// Snapshot is the visible book of one historical row: bids and offers best
// first.
type Snapshot struct {
	Bids   []SnapshotLevel
	Offers []SnapshotLevel
}

// ReadSnapshots parses rows of `ask_price,ask_size,bid_price,bid_size`
// repeated per level. Scale divides the integer price ticks; a non-positive
// scale uses DefaultPriceScale.
func ReadSnapshots(r io.Reader, levels int, scale int64) ([]Snapshot, error) {
	if levels <= 0 {
		return nil, engine.ErrInvalidDepth
	}
	if scale <= 0 {
		scale = DefaultPriceScale
	}
	divisor := decimal.NewFromInt(scale)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = levels * 4

	var snapshots []Snapshot
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		snapshot := Snapshot{
			Bids:   make([]SnapshotLevel, 0, levels),
			Offers: make([]SnapshotLevel, 0, levels),
		}
		for level := 0; level < levels*4; level += 4 {
			offer, err := parseSnapshotLevel(record[level], record[level+1], divisor)
			if err != nil {
				return nil, fmt.Errorf("row %d offer level %d: %w", row, level/4, err)
			}
			bid, err := parseSnapshotLevel(record[level+2], record[level+3], divisor)
			if err != nil {
				return nil, fmt.Errorf("row %d bid level %d: %w", row, level/4, err)
			}
			snapshot.Offers = append(snapshot.Offers, offer)
			snapshot.Bids = append(snapshot.Bids, bid)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func parseSnapshotLevel(priceField, sizeField string, divisor decimal.Decimal) (SnapshotLevel, error) {
	ticks, err := decimal.NewFromString(priceField)
	if err != nil {
		return SnapshotLevel{}, fmt.Errorf("price: %w", err)
	}
	size, err := strconv.ParseInt(sizeField, 10, 64)
	if err != nil {
		return SnapshotLevel{}, fmt.Errorf("size: %w", err)
	}
	return SnapshotLevel{Price: ticks.Div(divisor), Size: size}, nil
}

// Seed loads the snapshot into a fresh book as one resting order per level.
// Bids and offers in a valid snapshot do not cross, so seeding generates no
// fills.
func (s Snapshot) Seed(book *engine.Book) error {
	for _, level := range s.Bids {
		if _, fills, _, err := book.AddOrder(
			engine.SideBuy, level.Price, level.Size, engine.StyleLimit,
		); err != nil {
			return err
		} else if len(fills) > 0 {
			return fmt.Errorf("crossed snapshot: bid %s filled on seed", level.Price)
		}
	}
	for _, level := range s.Offers {
		if _, fills, _, err := book.AddOrder(
			engine.SideSell, level.Price, level.Size, engine.StyleLimit,
		); err != nil {
			return err
		} else if len(fills) > 0 {
			return fmt.Errorf("crossed snapshot: offer %s filled on seed", level.Price)
		}
	}
	return nil
}
