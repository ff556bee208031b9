package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// runMonitor watches for the restart sentinel during one listener
// incarnation. Detection comes from three sources: the in-process
// wakeup channel, an fsnotify watch on the output directory, and a
// fixed-interval poll as the fallback of record. On detection it runs
// the rescan and page regeneration on this goroutine, never on a
// request handler, then arms the listener shutdown and exits.
//
// The monitor never deletes the sentinel; only the run loop does,
// after the replacement listener is up. Deleting it here would open a
// window where a plain client close is mistaken for a final shutdown.
func (s *Server) runMonitor(ctx context.Context, stop <-chan struct{}) {
	logger := slog.Default().With("component", "restart-monitor")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("could not create fs watcher, falling back to polling only", "error", err)
	} else {
		if err := watcher.Add(s.outputDir); err != nil {
			logger.Warn("could not watch output directory", "error", err)
		}
		defer func() {
			_ = watcher.Close()
		}()
	}

	var events chan fsnotify.Event
	if watcher != nil {
		events = watcher.Events
	}

	ticker := time.NewTicker(s.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-s.coordinator.restartC:
		case <-ticker.C:
		case event := <-events:
			if event.Name != s.coordinator.sentinelPath || !event.Has(fsnotify.Create) {
				continue
			}
		}

		if !s.coordinator.SentinelExists() {
			continue
		}

		logger.Info("restart sentinel detected, rescanning before shutdown")
		s.coordinator.setState(StateScanning)

		// Failures here are warnings: the restart must still proceed
		// or the client polls a dead server forever.
		if _, err := s.scanner.Scan(ctx); err != nil {
			logger.Warn("rescan failed during restart", "error", err)
		}
		if err := s.generatePage(s.store.Snapshot()); err != nil {
			logger.Warn("page regeneration failed during restart", "error", err)
		}

		// The monitor is not a request handler, so a synchronous
		// graceful shutdown is safe here. In-flight responses,
		// including the restart acknowledgement, still get delivered.
		s.coordinator.shutdown()
		return
	}
}
