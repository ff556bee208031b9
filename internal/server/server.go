package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"dataset-builder/internal/dataset"
	"dataset-builder/internal/handlers"
	"dataset-builder/internal/store"
	"dataset-builder/internal/viewer"
)

const (
	bindBackoffInitial = 1 * time.Second
	bindBackoffMax     = 30 * time.Second
)

// Server owns the listen/serve/restart loop. One Server outlives many
// listener incarnations; a restart tears the listener down and the run
// loop brings a replacement up, possibly on a higher port.
type Server struct {
	host      string
	port      int
	outputDir string

	store        *store.Store
	scanner      handlers.Rescanner
	coordinator  *Coordinator
	generatePage handlers.PageGenerator

	monitorInterval time.Duration

	mu   sync.Mutex
	addr string
}

// Options configure a Server beyond its collaborators.
type Options struct {
	Host            string
	Port            int
	MonitorInterval time.Duration
	ShutdownDelay   time.Duration
}

// New creates a Server serving the dataset viewer out of outputDir.
func New(st *store.Store, sc handlers.Rescanner, outputDir string, opts Options) *Server {
	host := opts.Host
	if host == "" {
		host = "127.0.0.1"
	}
	srv := &Server{
		host:            host,
		port:            opts.Port,
		outputDir:       outputDir,
		store:           st,
		scanner:         sc,
		coordinator:     NewCoordinator(outputDir, opts.ShutdownDelay),
		monitorInterval: opts.MonitorInterval,
	}
	srv.generatePage = func(d *dataset.Dataset) error {
		return viewer.Generate(outputDir, d)
	}
	return srv
}

// Addr returns the address of the most recently bound listener, or ""
// before the first successful bind.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) setAddr(addr string) {
	s.mu.Lock()
	s.addr = addr
	s.mu.Unlock()
}

// Coordinator exposes the restart coordinator, mainly for tests.
func (s *Server) Coordinator() *Coordinator {
	return s.coordinator
}

// Run drives the listener lifecycle until the context is cancelled or
// a shutdown completes with no restart pending. Bind failures on a
// busy port move to the next port immediately; any other bind failure
// retries with exponential backoff, regenerating the viewer page on
// the way in case an earlier incarnation never produced one.
func (s *Server) Run(ctx context.Context) error {
	backoff := bindBackoffInitial

	for {
		if ctx.Err() != nil {
			s.coordinator.setState(StateTerminated)
			return ctx.Err()
		}

		addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				slog.Warn("port in use, trying next", "port", s.port)
				s.port++
				continue
			}

			slog.Error("could not bind listener", "addr", addr, "error", err, "retry_in", backoff.String())
			if regenErr := s.regeneratePageIfMissing(); regenErr != nil {
				slog.Warn("could not regenerate viewer page while waiting to bind", "error", regenErr)
			}
			select {
			case <-ctx.Done():
				s.coordinator.setState(StateTerminated)
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > bindBackoffMax {
				backoff = bindBackoffMax
			}
			continue
		}
		backoff = bindBackoffInitial

		httpSrv := &http.Server{
			Handler:           s.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		s.coordinator.attach(httpSrv)
		s.setAddr(ln.Addr().String())

		slog.Info("dataset viewer ready",
			"url", fmt.Sprintf("http://%s/%s", ln.Addr().String(), viewer.PageName),
			"port", s.port,
		)

		// The sentinel comes off only now, with the replacement
		// listener accepting. This is both the restart acknowledgement
		// and the disposal of a stale sentinel left by a dead process.
		s.coordinator.ClearSentinel()

		stopMonitor := make(chan struct{})
		monitorDone := make(chan struct{})
		go func() {
			defer close(monitorDone)
			s.runMonitor(ctx, stopMonitor)
		}()

		serveErrC := make(chan error, 1)
		go func() {
			serveErrC <- httpSrv.Serve(ln)
		}()

		var serveErr error
		select {
		case serveErr = <-serveErrC:
		case <-ctx.Done():
			s.coordinator.shutdown()
			serveErr = <-serveErrC
		}
		close(stopMonitor)
		<-monitorDone

		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.coordinator.setState(StateTerminated)
			return fmt.Errorf("serve: %w", serveErr)
		}
		s.coordinator.setState(StateStopped)

		if ctx.Err() != nil {
			s.coordinator.setState(StateTerminated)
			return ctx.Err()
		}
		if !s.coordinator.SentinelExists() {
			slog.Info("no restart pending, exiting")
			s.coordinator.setState(StateTerminated)
			return nil
		}
		slog.Info("restart pending, binding replacement listener")
	}
}

// regeneratePageIfMissing rebuilds the viewer page when the output
// directory lacks one, so a browser has something to load once the
// bind finally succeeds.
func (s *Server) regeneratePageIfMissing() error {
	if _, err := os.Stat(filepath.Join(s.outputDir, viewer.PageName)); err == nil {
		return nil
	}
	return s.generatePage(s.store.Snapshot())
}
