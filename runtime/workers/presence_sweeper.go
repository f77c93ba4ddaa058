package workers

import (
	"context"
	"log/slog"
	"time"

	"pairchat/presence"
)

// PresenceSweeper periodically flips users with expired heartbeats to
// offline. Readers already treat them as offline (the tracker applies the
// timeout on Get); the sweep exists so subscribers get a presence event
// instead of only discovering the change on the next read.
type PresenceSweeper struct {
	log      *slog.Logger
	tracker  *presence.Tracker
	interval time.Duration
}

func NewPresenceSweeper(log *slog.Logger, tracker *presence.Tracker, interval time.Duration) *PresenceSweeper {
	return &PresenceSweeper{log: log, tracker: tracker, interval: interval}
}

func (w *PresenceSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if expired := w.tracker.Sweep(); len(expired) > 0 {
				w.log.Debug("presence sweep", "expired", len(expired))
			}
		}
	}
}
