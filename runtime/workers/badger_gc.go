package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGC reclaims value log space in the background. Badger requires
// the application to drive this; ErrNoRewrite simply means there was
// nothing worth rewriting this round.
type BadgerGC struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewBadgerGC(log *slog.Logger, db *badger.DB, interval time.Duration) *BadgerGC {
	return &BadgerGC{log: log, db: db, interval: interval}
}

func (w *BadgerGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := w.db.RunValueLogGC(0.5)
			if err != nil && !stderrors.Is(err, badger.ErrNoRewrite) {
				w.log.Warn("value log GC failed", "error", err)
			}
		}
	}
}
