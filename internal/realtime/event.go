package realtime

import (
	"context"
	"errors"
	"time"

	"irokart-be/internal/logger"
	"irokart-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TablePayments   = "payments"
	TableInventory  = "inventory"
	TableProducts   = "products"
	TableProfiles   = "profiles"
)

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

var ErrBusClosed = errors.New("realtime: bus closed")

// Event says that a row in Table changed. Consumers re-read what they need;
// the event carries no row data.
type Event struct {
	Table string    `json:"table"`
	Op    string    `json:"op"`
	ID    string    `json:"id,omitempty"`
	At    time.Time `json:"at"`
}

func NewEvent(table, op, id string) Event {
	return Event{Table: table, Op: op, ID: id, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus fans events out to subscribers. Subscribing with no tables receives
// every event. The returned channel is closed when ctx is done or the bus
// is closed.
type Bus interface {
	Publisher
	Subscribe(ctx context.Context, tables ...string) (<-chan Event, error)
	Close() error
}

// PublishAll sends events after a write has committed. Failures are logged
// and otherwise ignored: the write already happened.
func PublishAll(ctx context.Context, p Publisher, events ...Event) {
	if p == nil {
		return
	}
	for _, ev := range events {
		if err := p.Publish(ctx, ev); err != nil {
			logger.FromCtx(ctx).Warn("failed to publish change event",
				zap.String("table", ev.Table),
				zap.String("op", ev.Op),
				zap.Error(err),
			)
			continue
		}
		metrics.Default().Counter(metrics.RealtimeEventsPublished).Inc()
	}
}

func wants(tables map[string]bool, table string) bool {
	return len(tables) == 0 || tables[table]
}

func tableSet(tables []string) map[string]bool {
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		set[t] = true
	}
	return set
}
