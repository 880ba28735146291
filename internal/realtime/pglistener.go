package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"irokart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// NotifyChannel is the PostgreSQL channel the table triggers notify on.
const NotifyChannel = "table_changes"

type notification struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    string `json:"id"`
}

// PGListener forwards NOTIFY payloads into a Publisher so writes made
// outside this service reach subscribers too.
type PGListener struct {
	dsn          string
	pub          Publisher
	minReconnect time.Duration
	maxReconnect time.Duration
	pingEvery    time.Duration
}

func NewPGListener(dsn string, pub Publisher) *PGListener {
	return &PGListener{
		dsn:          dsn,
		pub:          pub,
		minReconnect: 10 * time.Second,
		maxReconnect: time.Minute,
		pingEvery:    90 * time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (l *PGListener) Run(ctx context.Context) error {
	log := logger.L().With(zap.String("component", "pg_listener"))

	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}
	log.Info("listening for table changes", zap.String("channel", NotifyChannel))

	ticker := time.NewTicker(l.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			// nil after a reconnect; anything missed in between is gone
			if n == nil {
				continue
			}
			ev, err := ParseNotification(n.Extra)
			if err != nil {
				log.Warn("bad notification payload", zap.String("payload", n.Extra), zap.Error(err))
				continue
			}
			PublishAll(ctx, l.pub, ev)
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					log.Warn("listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

// ParseNotification decodes a trigger payload of the form
// {"table":"orders","op":"UPDATE","id":"..."}.
func ParseNotification(payload string) (Event, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Event{}, err
	}
	if strings.TrimSpace(n.Table) == "" {
		return Event{}, fmt.Errorf("notification without table")
	}
	op := strings.ToUpper(n.Op)
	if op == "" {
		op = OpUpdate
	}
	return NewEvent(n.Table, op, n.ID), nil
}
