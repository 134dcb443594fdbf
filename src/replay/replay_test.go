package replay

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"matchbook/src/engine"
)

const messageFeed = `34200.1,1,101,5,105000,1
34200.2,1,102,5,105000,-1
34200.3,1,103,10,100000,1
34200.4,2,103,4,100000,1
34200.5,4,103,2,100000,1
34200.6,3,103,6,100000,1
34200.7,3,999,1,100000,1
`

func TestReadMessages(t *testing.T) {
	messages, err := ReadMessages(strings.NewReader(messageFeed), 0)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(messages) != 7 {
		t.Fatalf("expected 7 messages, got: %d", len(messages))
	}

	first := messages[0]
	if first.Event != EventSubmit || first.OrderID != 101 || first.Size != 5 {
		t.Errorf("got message: %+v", first)
	}
	if !first.Price.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("got price: %s", first.Price)
	}
	if first.Side != engine.SideBuy {
		t.Errorf("got side: %v", first.Side)
	}
	if messages[1].Side != engine.SideSell {
		t.Errorf("got side: %v", messages[1].Side)
	}
}

func TestReadMessagesMalformedRow(t *testing.T) {
	cases := []struct {
		name string
		feed string
	}{
		{"missing field", "34200.1,1,101,5,105000\n"},
		{"bad event type", "34200.1,9,101,5,105000,1\n"},
		{"bad side", "34200.1,1,101,5,105000,2\n"},
		{"bad price", "34200.1,1,101,5,abc,1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadMessages(strings.NewReader(tc.feed), 0); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReplayFeed(t *testing.T) {
	ex := engine.NewExchange(engine.DefaultPlugins...)

	stats, err := Replay(ex, "AAPL", strings.NewReader(messageFeed), 0)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if stats.Submitted != 3 {
		t.Errorf("got submitted: %d", stats.Submitted)
	}
	if stats.Fills != 1 {
		t.Errorf("got fills: %d", stats.Fills)
	}
	if stats.Amended != 1 {
		t.Errorf("got amended: %d", stats.Amended)
	}
	if stats.Cancelled != 1 {
		t.Errorf("got cancelled: %d", stats.Cancelled)
	}
	if stats.Skipped != 2 {
		t.Errorf("got skipped: %d", stats.Skipped)
	}

	// every submitted order either traded away or was cancelled
	if got := ex.Render("AAPL"); got != " : " {
		t.Errorf("got book: %q", got)
	}
	if got := ex.OrderCount("AAPL"); got != 0 {
		t.Errorf("expected no live orders, got: %d", got)
	}
}

func TestReadSnapshots(t *testing.T) {
	feed := "110000,4,105000,3,115000,2,100000,7\n"

	snapshots, err := ReadSnapshots(strings.NewReader(feed), 2, 0)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got: %d", len(snapshots))
	}

	snapshot := snapshots[0]
	if len(snapshot.Bids) != 2 || len(snapshot.Offers) != 2 {
		t.Fatalf("got %d bid and %d offer levels", len(snapshot.Bids), len(snapshot.Offers))
	}
	if !snapshot.Offers[0].Price.Equal(decimal.RequireFromString("11")) || snapshot.Offers[0].Size != 4 {
		t.Errorf("got best offer: %+v", snapshot.Offers[0])
	}
	if !snapshot.Bids[0].Price.Equal(decimal.RequireFromString("10.5")) || snapshot.Bids[0].Size != 3 {
		t.Errorf("got best bid: %+v", snapshot.Bids[0])
	}

	if _, err := ReadSnapshots(strings.NewReader(feed), 0, 0); err == nil {
		t.Error("expected an error for a non-positive level count")
	}
}

func TestSnapshotSeed(t *testing.T) {
	feed := "110000,4,105000,3,115000,2,100000,7\n"
	snapshots, err := ReadSnapshots(strings.NewReader(feed), 2, 0)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	book := engine.NewBook()
	if err := snapshots[0].Seed(book); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if got := book.String(); got != "10x7,10.5x3 : 11x4,11.5x2" {
		t.Errorf("got book: %q", got)
	}
}

func TestSnapshotSeedRejectsCrossedBook(t *testing.T) {
	feed := "105000,5,110000,5\n"
	snapshots, err := ReadSnapshots(strings.NewReader(feed), 1, 0)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if err := snapshots[0].Seed(engine.NewBook()); err == nil {
		t.Error("expected an error for a crossed snapshot")
	}
}
