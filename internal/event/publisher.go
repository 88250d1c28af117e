// Package event delivers domain events emitted by the services.
//
// Delivery is best effort: services ignore publish errors so a failing sink
// never rolls back a booking or a review.
package event

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mvaleed/innkeep/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
	Close() error
}

// LoggingPublisher writes each event as a structured log record. Account
// activity goes to debug; bookings, reviews and catalog changes to info.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger.With("component", "events")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	for _, e := range events {
		level := slog.LevelInfo
		if strings.HasPrefix(e.Type, "user.") {
			level = slog.LevelDebug
		}

		data := make([]any, 0, len(e.Data))
		for k, v := range e.Data {
			data = append(data, slog.Any(k, v))
		}
		p.logger.Log(ctx, level, "event",
			slog.String("event_type", e.Type),
			slog.String("event_id", e.ID.String()),
			slog.String("user_id", e.UserID.String()),
			slog.Time("at", e.Timestamp),
			slog.Group("data", data...),
		)
	}
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }

// Counter observes published event types.
type Counter interface {
	EventPublished(eventType string)
}

// CountingPublisher reports every event type to a Counter.
type CountingPublisher struct {
	counter Counter
}

func NewCountingPublisher(counter Counter) *CountingPublisher {
	return &CountingPublisher{counter: counter}
}

func (p *CountingPublisher) Publish(_ context.Context, events ...domain.Event) error {
	for _, e := range events {
		p.counter.EventPublished(e.Type)
	}
	return nil
}

func (p *CountingPublisher) Close() error { return nil }

// Fanout delivers every event to all publishers, even when one of them fails.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, events ...domain.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) Publish(context.Context, ...domain.Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
