package repo

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
)

// notifyChannel is the Postgres NOTIFY channel fired by the
// notify_notifications trigger on every insert, update, or delete on the
// notifications table.
const notifyChannel = "notifications_changed"

// ChangeEvent describes one row change on a watched table. Consumers treat
// every operation the same way — any change means "refresh" — so the
// fields are informational.
type ChangeEvent struct {
	Op    string `json:"op"`
	Table string `json:"table"`
}

// Listener holds a dedicated Postgres connection in LISTEN mode and turns
// NOTIFY payloads into ChangeEvents. It reconnects with capped backoff on
// transport failure; subscribers of the events channel never see the gap.
type Listener struct {
	dsn    string
	logger *slog.Logger
	events chan ChangeEvent
}

// NewListener constructs a Listener for the notifications change channel.
// Call Run to start it.
func NewListener(dsn string, logger *slog.Logger) *Listener {
	return &Listener{
		dsn:    dsn,
		logger: logger,
		// Buffered so a burst of changes coalesces instead of blocking the
		// connection loop. Dropping an event when the buffer is full is
		// safe: a refresh is already pending and refreshes are identical.
		events: make(chan ChangeEvent, 16),
	}
}

// Events returns the channel change events are delivered on. The channel
// is closed when Run returns.
func (l *Listener) Events() <-chan ChangeEvent {
	return l.events
}

// Run connects, listens, and delivers events until ctx is cancelled.
// Connection failures are retried with fibonacci backoff capped at 30s.
func (l *Listener) Run(ctx context.Context) error {
	defer close(l.events)

	for {
		conn, err := l.connect(ctx)
		if err != nil {
			// connect only fails when ctx is done.
			return err
		}
		l.logger.Info("listening for notification changes", "channel", notifyChannel)

		err = l.wait(ctx, conn)
		_ = conn.Close(context.Background())

		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Warn("notification listener disconnected, reconnecting", "error", err)
	}
}

// connect establishes a dedicated connection in LISTEN mode, retrying
// until it succeeds or ctx is cancelled.
func (l *Listener) connect(ctx context.Context) (*pgx.Conn, error) {
	var conn *pgx.Conn
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewFibonacci(time.Second))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := pgx.Connect(ctx, l.dsn)
		if err != nil {
			l.logger.Warn("listener connect failed", "error", err)
			return retry.RetryableError(err)
		}
		if _, err := c.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
			_ = c.Close(ctx)
			l.logger.Warn("LISTEN failed", "error", err)
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// wait blocks on the connection delivering notifications until the
// connection breaks or ctx is cancelled.
func (l *Listener) wait(ctx context.Context, conn *pgx.Conn) error {
	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		ev := ChangeEvent{Table: "notifications"}
		// The payload is advisory; an unparsable one still triggers a refresh.
		_ = json.Unmarshal([]byte(notification.Payload), &ev)

		select {
		case l.events <- ev:
		default:
		}
	}
}
