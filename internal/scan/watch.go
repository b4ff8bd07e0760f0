package scan

import (
	"path/filepath"
	"time"

	"github.com/rjeczalik/notify"
)

// debounceInterval is how long Watch waits after the last filesystem
// event before triggering a rescan, so a burst of writes to one file
// (e.g. a long rip or download) causes a single scan rather than one
// per event.
const debounceInterval = 5 * time.Second

// Watch subscribes to inotify events under every configured root and
// triggers a scan shortly after activity settles down. It runs until
// shutdown is closed. A scan already in progress is left to finish;
// Watch does not interrupt it.
func (w *Worker) Watch(shutdown <-chan struct{}) error {
	roots := w.source.Roots()

	events := make(chan notify.EventInfo, 1)
	for _, root := range roots {
		if err := notify.Watch(filepath.Join(root.Path, "..."), events, notify.All); err != nil {
			notify.Stop(events)
			return err
		}
	}
	defer notify.Stop(events)

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-events:
			timer.Reset(debounceInterval)

		case <-timer.C:
			log.Trace("filesystem activity settled, triggering scan")
			if err := w.Start(); err != nil {
				log.Errorf("cannot start scan triggered by filesystem watch: %v", err)
			}

		case <-shutdown:
			return nil
		}
	}
}

// Poll triggers a scan every interval until shutdown is closed. It is the
// periodic counterpart to Watch: the two triggers run side by side so a
// scan happens both shortly after filesystem activity and, as a
// fallback, on a fixed schedule regardless of watch reliability.
func (w *Worker) Poll(interval time.Duration, shutdown <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Start(); err != nil {
				log.Errorf("cannot start scan triggered by --scan-interval: %v", err)
			}
		case <-shutdown:
			return
		}
	}
}
