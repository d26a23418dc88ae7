package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"mangatl/internal/commands"
	"mangatl/internal/config"
	"mangatl/internal/deps"
	"mangatl/internal/events"
	"mangatl/internal/logging"
)

// Daemon owns the command registry, the event hub, and the HTTP API, and
// enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *commands.Registry
	hub      *events.Hub
	logPath  string

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	api       *apiServer
	startedAt time.Time
	running   atomic.Bool

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	StartedAt    time.Time
	APIAddress   string
	LockFilePath string
	LogPath      string
	Commands     int
	LastEventSeq uint64
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, registry *commands.Registry, hub *events.Hub, logger *slog.Logger, logPath string) (*Daemon, error) {
	if cfg == nil || registry == nil || hub == nil {
		return nil, errors.New("daemon requires config, command registry, and event hub")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		registry: registry,
		hub:      hub,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		shutdown: make(chan struct{}),
	}, nil
}

// Start acquires the daemon lock and starts the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(d.cfg.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mangatl daemon instance is already running")
	}

	api := newAPIServer(d.cfg, d, d.logger)
	if err := api.start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}
	d.api = api
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("mangatl daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", api.address()),
		logging.Int("commands", len(d.registry.Names())),
	)
	return nil
}

// Stop shuts down the HTTP API and releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.Load() {
		return
	}
	d.api.stop()
	d.api = nil
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_unlock_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next daemon start may report a running instance"),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("mangatl daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// RequestShutdown asks the hosting process to exit.
func (d *Daemon) RequestShutdown() {
	d.shutdownOnce.Do(func() {
		d.logger.Info("shutdown requested")
		close(d.shutdown)
	})
}

// ShutdownRequested is closed once RequestShutdown has been called.
func (d *Daemon) ShutdownRequested() <-chan struct{} {
	return d.shutdown
}

// Invoke runs a registered command.
func (d *Daemon) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	return d.registry.Invoke(ctx, name, args)
}

// Commands lists the registered command names.
func (d *Daemon) Commands() []string {
	return d.registry.Names()
}

// Events returns the daemon's event hub.
func (d *Daemon) Events() *events.Hub {
	return d.hub
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(context.Context) Status {
	d.mu.Lock()
	startedAt := d.startedAt
	address := ""
	if d.api != nil {
		address = d.api.address()
	}
	d.mu.Unlock()

	_, lastSeq := d.hub.Tail(1)
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StartedAt:    startedAt,
		APIAddress:   address,
		LockFilePath: d.lockPath,
		LogPath:      d.logPath,
		Commands:     len(d.registry.Names()),
		LastEventSeq: lastSeq,
		Dependencies: deps.CheckBinaries(deps.HostRequirements(d.cfg.Dialogs.Mode)),
	}
}
