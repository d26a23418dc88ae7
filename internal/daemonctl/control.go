package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mangatl/internal/api"
	"mangatl/internal/config"
	"mangatl/internal/deps"
	"mangatl/internal/ipc"
)

// ErrDaemonNotRunning is returned by Stop when nothing answers on the socket.
var ErrDaemonNotRunning = errors.New("daemon not running")

const defaultPollInterval = 200 * time.Millisecond

// LaunchOptions are forwarded to the detached `daemon run` process.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

func (o LaunchOptions) args() []string {
	args := []string{"daemon", "run"}
	if path := strings.TrimSpace(o.ConfigPath); path != "" {
		args = append(args, "--config", path)
	}
	if level := strings.TrimSpace(o.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}
	return args
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult reports what Start did.
type StartResult struct {
	State    StartState
	Launched bool
	PID      int
}

// StopResult reports what Stop did.
type StopResult struct {
	StopAcknowledged bool
	ForcedKill       bool
	PID              int
}

// Controller drives one daemon instance identified by its socket, pid file
// and lock file.
type Controller struct {
	SocketPath string
	PIDPath    string
	LockPath   string
	LogPath    string
	DialogMode string
	Poll       time.Duration
}

// NewController derives control paths from cfg. A non-empty socketOverride
// replaces the configured socket.
func NewController(cfg *config.Config, socketOverride string) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}
	socket := strings.TrimSpace(socketOverride)
	if socket == "" {
		socket = cfg.SocketPath()
	}
	return &Controller{
		SocketPath: socket,
		PIDPath:    cfg.PIDPath(),
		LockPath:   cfg.LockPath(),
		LogPath:    cfg.LogPath(),
		DialogMode: cfg.Dialogs.Mode,
		Poll:       defaultPollInterval,
	}, nil
}

// Launch re-runs executablePath as a detached foreground daemon.
func Launch(executablePath string, opts LaunchOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return errors.New("resolve executable: executable path is empty")
	}
	proc := exec.Command(executablePath, opts.args()...)
	proc.SysProcAttr = detachedAttrs()
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// Start launches the daemon unless one already answers, then waits up to
// wait for the socket.
func (c *Controller) Start(executablePath string, opts LaunchOptions, wait time.Duration) (StartResult, error) {
	result := StartResult{State: StartStateAlreadyRunning}
	client, err := ipc.Dial(c.SocketPath)
	if err != nil {
		if err := Launch(executablePath, opts); err != nil {
			return StartResult{}, err
		}
		client, err = c.waitForClient(wait)
		if err != nil {
			return StartResult{}, err
		}
		result = StartResult{State: StartStateStarted, Launched: true}
	}
	defer client.Close()

	if status, err := client.Status(); err == nil && status != nil {
		result.PID = status.PID
	}
	return result, nil
}

func (c *Controller) waitForClient(timeout time.Duration) (*ipc.Client, error) {
	var client *ipc.Client
	err := c.poll(timeout, func() (bool, error) {
		conn, err := ipc.Dial(c.SocketPath)
		if err != nil {
			return false, err
		}
		client = conn
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("daemon failed to start: %w", err)
	}
	return client, nil
}

// WaitForShutdown returns once the socket stops accepting connections.
func (c *Controller) WaitForShutdown(timeout time.Duration) error {
	err := c.poll(timeout, func() (bool, error) {
		client, err := ipc.Dial(c.SocketPath)
		if err != nil {
			return isDaemonUnavailable(err), err
		}
		_ = client.Close()
		return false, errors.New("daemon still running")
	})
	if err != nil {
		return fmt.Errorf("daemon did not stop: %w", err)
	}
	return nil
}

// poll calls check until it reports done or timeout passes. The last check
// error is returned on timeout.
func (c *Controller) poll(timeout time.Duration, check func() (bool, error)) error {
	interval := c.Poll
	if interval <= 0 {
		interval = defaultPollInterval
	}
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		done, err := check()
		if done {
			return nil
		}
		lastErr = err
		if !time.Now().Add(interval).Before(deadline) {
			break
		}
		time.Sleep(interval)
	}
	if lastErr == nil {
		lastErr = errors.New("timed out")
	}
	return lastErr
}

// Running reports whether the daemon answers on the socket and its pid when
// it does.
func (c *Controller) Running() (bool, int, error) {
	client, err := ipc.Dial(c.SocketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	defer client.Close()
	status, err := client.Status()
	if err != nil || status == nil {
		return true, 0, err
	}
	return true, status.PID, nil
}

// Stop asks the daemon to shut down over IPC. When it still answers after
// grace, the process named by the pid file is killed and its pid, lock and
// socket files are removed.
func (c *Controller) Stop(grace time.Duration) (StopResult, error) {
	client, err := ipc.Dial(c.SocketPath)
	if err != nil {
		if isDaemonUnavailable(err) {
			return StopResult{}, ErrDaemonNotRunning
		}
		return StopResult{}, err
	}
	var result StopResult
	if status, err := client.Status(); err == nil && status != nil {
		result.PID = status.PID
	}
	resp, err := client.Shutdown()
	_ = client.Close()
	if err != nil {
		return StopResult{}, err
	}
	result.StopAcknowledged = resp != nil && resp.Acknowledged

	if c.WaitForShutdown(grace) == nil {
		return result, nil
	}
	alive, livePID, _ := c.Running()
	if !alive {
		return result, nil
	}
	if livePID > 0 {
		result.PID = livePID
	}

	pid, err := ReadPID(c.PIDPath)
	if err != nil {
		return result, fmt.Errorf("failed to stop daemon process: %w", err)
	}
	if pid == 0 {
		pid = result.PID
	}
	if err := Kill(pid); err != nil {
		return result, fmt.Errorf("failed to stop daemon process: %w", err)
	}
	for _, path := range []string{c.PIDPath, c.LockPath, c.SocketPath} {
		if path != "" {
			_ = os.Remove(path)
		}
	}
	result.ForcedKill = true
	result.PID = pid
	return result, nil
}

// Status returns the live daemon status, or an offline snapshot with local
// dependency checks when nothing answers.
func (c *Controller) Status() *ipc.StatusResponse {
	if client, err := ipc.Dial(c.SocketPath); err == nil {
		defer client.Close()
		if resp, err := client.Status(); err == nil && resp != nil {
			return resp
		}
	}
	return &ipc.StatusResponse{
		LockFilePath: c.LockPath,
		LogPath:      c.LogPath,
		Dependencies: api.FromDependencies(deps.CheckBinaries(deps.HostRequirements(c.DialogMode))),
	}
}

// ReadPID parses the daemon pid file. A missing or empty file yields 0.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(value)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("daemon pid file %q holds %q", path, value)
	}
	return pid, nil
}

// Kill sends SIGKILL to pid. It refuses pid 0 and the calling process.
func Kill(pid int) error {
	switch {
	case pid <= 0:
		return errors.New("unable to determine daemon pid")
	case pid == os.Getpid():
		return fmt.Errorf("refusing to kill current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	return nil
}

func isDaemonUnavailable(err error) bool {
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
