package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SentinelName is the restart sentinel file inside the output
// directory. Its existence, not its content, carries the signal.
const SentinelName = ".restart_needed"

// State is a phase of the restart coordinator's lifecycle.
type State int32

const (
	StateRunning State = iota
	StateRestartRequested
	StateScanning
	StateShutdownPending
	StateStopped
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateRestartRequested:
		return "RESTART_REQUESTED"
	case StateScanning:
		return "SCANNING"
	case StateShutdownPending:
		return "SHUTDOWN_PENDING"
	case StateStopped:
		return "STOPPED"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Coordinator drives server teardown and rebind. The restart request
// is produced on a request-handler goroutine, consumed by the monitor
// goroutine, and acknowledged by the main run loop; the on-disk
// sentinel is the piece of the handshake that survives the listener.
type Coordinator struct {
	sentinelPath  string
	shutdownDelay time.Duration

	mu           sync.Mutex
	state        State
	srv          *http.Server
	shutdownOnce *sync.Once

	// restartC wakes the monitor immediately instead of waiting out
	// its poll interval. Buffered so the producer never blocks.
	restartC chan struct{}
}

// NewCoordinator creates a Coordinator using a sentinel file inside
// outputDir.
func NewCoordinator(outputDir string, shutdownDelay time.Duration) *Coordinator {
	return &Coordinator{
		sentinelPath:  filepath.Join(outputDir, SentinelName),
		shutdownDelay: shutdownDelay,
		state:         StateRunning,
		restartC:      make(chan struct{}, 1),
	}
}

// attach binds the coordinator to the current listener incarnation.
// Each incarnation gets a fresh shutdown-once so a restart in one
// lifetime cannot suppress the shutdown of the next.
func (c *Coordinator) attach(srv *http.Server) {
	c.mu.Lock()
	c.srv = srv
	c.shutdownOnce = &sync.Once{}
	c.setStateLocked(StateRunning)
	c.mu.Unlock()
}

func (c *Coordinator) setStateLocked(s State) {
	if c.state != s {
		slog.Debug("restart coordinator state change", "from", c.state.String(), "to", s.String())
		c.state = s
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
}

// State returns the current lifecycle phase.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RequestRestart durably writes the sentinel, wakes the monitor, and
// arms a delayed listener shutdown. The delay exists so the handler's
// HTTP response is flushed before the listener starts tearing down; a
// synchronous shutdown from inside a handler would deadlock the serve
// loop on itself.
func (c *Coordinator) RequestRestart() error {
	if err := c.writeSentinel(); err != nil {
		return err
	}
	c.setState(StateRestartRequested)

	select {
	case c.restartC <- struct{}{}:
	default:
	}

	// Capture the current incarnation now. If the timer fires after
	// the replacement listener is already up, it must not touch it.
	c.mu.Lock()
	srv, once := c.srv, c.shutdownOnce
	c.mu.Unlock()
	time.AfterFunc(c.shutdownDelay, func() {
		c.shutdownIncarnation(srv, once)
	})
	return nil
}

// writeSentinel creates the sentinel file and fsyncs it so the signal
// survives even if the process dies right after responding.
func (c *Coordinator) writeSentinel() error {
	f, err := os.Create(c.sentinelPath)
	if err != nil {
		return fmt.Errorf("create restart sentinel: %w", err)
	}
	// Content is an opaque token; existence is what matters.
	if _, err := fmt.Fprintf(f, "%s %d\n", uuid.New().String(), time.Now().Unix()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write restart sentinel: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync restart sentinel: %w", err)
	}
	return f.Close()
}

// SentinelExists reports whether a restart is pending on disk.
func (c *Coordinator) SentinelExists() bool {
	_, err := os.Stat(c.sentinelPath)
	return err == nil
}

// ClearSentinel removes the sentinel. Called only by the run loop,
// after the replacement listener is bound, and once before the very
// first bind to discard a stale sentinel from a dead process.
func (c *Coordinator) ClearSentinel() {
	if err := os.Remove(c.sentinelPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not remove restart sentinel", "path", c.sentinelPath, "error", err)
	}
}

// shutdown stops the current listener, at most once per incarnation.
func (c *Coordinator) shutdown() {
	c.mu.Lock()
	srv, once := c.srv, c.shutdownOnce
	c.mu.Unlock()
	c.shutdownIncarnation(srv, once)
}

func (c *Coordinator) shutdownIncarnation(srv *http.Server, once *sync.Once) {
	if srv == nil || once == nil {
		return
	}

	once.Do(func() {
		c.setState(StateShutdownPending)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("error during listener shutdown", "error", err)
		}
	})
}
