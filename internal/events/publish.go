package events

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// publishBaseDelay is the first retry delay; each retry doubles it
const publishBaseDelay = 50 * time.Millisecond

// PublishWithRetry sends an event, retrying up to attempts times with
// doubling delays. A nil publisher is a no-op. Nil or closed clients are not
// retried, and waiting stops early when ctx is done. The error of the last
// attempt is returned.
func PublishWithRetry(ctx context.Context, publisher EventPublisher, event Event, attempts int) error {
	if publisher == nil {
		return nil
	}
	if attempts < 1 {
		attempts = 1
	}

	delay := publishBaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = publisher.SendEvent(event); err == nil {
			if attempt > 1 {
				slog.Debug("event published after retry", "attempt", attempt, "source", event.Source)
			}
			return nil
		}
		if errors.Is(err, ErrNilClient) || errors.Is(err, ErrClientClosed) || attempt == attempts {
			break
		}

		slog.Debug("event publish failed, retrying", "attempt", attempt, "retry_delay", delay, "error", err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}

	slog.Warn("event publish failed",
		"event_type", event.Type,
		"source", event.Source,
		"columns", len(event.ColumnIDs),
		"error", err)
	return err
}
