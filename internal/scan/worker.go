// Package scan implements the filesystem-to-catalog reconciliation
// pipeline of §4.D: a single cancellable background worker that brings
// the catalog into agreement with the configured roots.
package scan

import (
	"sync"
	"sync/atomic"

	l "github.com/sirupsen/logrus"

	"github.com/mipimipi/musicd/internal/catalog"
)

var log *l.Entry = l.WithFields(l.Fields{"srv": "scan"})

// Worker runs the reconciliation algorithm in the background. Start is
// idempotent while running; Stop requests cancellation and blocks until
// the worker has exited (§4.D execution model).
type Worker struct {
	source *catalog.Source

	mu      sync.Mutex
	running bool
	cancel  chan struct{}
	done    chan struct{}
}

// NewWorker returns a Worker that reconciles the catalog reachable from
// source.
func NewWorker(source *catalog.Source) *Worker {
	return &Worker{source: source}
}

// IsRunning reflects whether a scan is currently in progress.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start launches a scan in the background. Calling Start while a scan is
// already running is a no-op.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		log.Trace("scan already running, start is a no-op")
		return nil
	}

	cat, err := w.source.Open()
	if err != nil {
		return err
	}

	w.running = true
	w.cancel = make(chan struct{})
	w.done = make(chan struct{})

	cancel := w.cancel
	done := w.done

	go func() {
		defer close(done)
		defer cat.Close()
		defer func() {
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
		}()

		log.Info("scan starting")
		if err := run(cat, cancel); err != nil {
			log.Errorf("scan aborted: %v", err)
			return
		}
		log.Info("scan finished")
	}()

	return nil
}

// Stop requests cancellation of an in-progress scan and blocks until the
// worker has exited. Stop on an idle worker returns immediately.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	running := w.running
	w.mu.Unlock()

	if !running {
		return
	}

	close(cancel)
	<-done
}

// cancelled reports whether c has been closed.
func cancelled(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
