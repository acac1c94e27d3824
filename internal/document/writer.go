package document

import (
	"context"
	"log/slog"

	"github.com/metcalfc/hark/internal/storage"
)

// writer is the single goroutine that persists snapshots of the library.
// Snapshots are queued in mutation order; when several are pending only the
// newest is written.
type writer struct {
	storage storage.Storage
	key     string
	logger  *slog.Logger
	pending chan []byte
	done    chan struct{}
}

func newWriter(st storage.Storage, key string, logger *slog.Logger) *writer {
	w := &writer{
		storage: st,
		key:     key,
		logger:  logger,
		pending: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue must be called with the store lock held so queue order matches
// mutation order.
func (w *writer) enqueue(snapshot []byte) {
	w.pending <- snapshot
}

func (w *writer) run() {
	defer close(w.done)

	for snapshot := range w.pending {
	drain:
		for {
			select {
			case next, ok := <-w.pending:
				if !ok {
					break drain
				}
				snapshot = next
			default:
				break drain
			}
		}

		if err := w.storage.Set(context.Background(), w.key, snapshot); err != nil {
			w.logger.Error("failed to persist documents", "key", w.key, "error", err)
			continue
		}
		w.logger.Debug("documents persisted", "key", w.key, "bytes", len(snapshot))
	}
}

// close flushes pending snapshots and stops the goroutine.
func (w *writer) close() {
	close(w.pending)
	<-w.done
}
