package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tridentos/bosun/internal/errors"
	"github.com/tridentos/bosun/internal/logging"
)

// State describes what the manager knows about a named session.
type State int

const (
	// StateCreated is the state of a session the manager just created
	// and has not yet sent a command to.
	StateCreated State = iota
	// StateRunning means the session exists and an operator is attached.
	StateRunning
	// StateDetached means the session exists with no attached client.
	// This is the normal state of a supervised service.
	StateDetached
	// StateDead means no session with that name exists on the socket.
	StateDead
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateDetached:
		return "detached"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Handle identifies one durable session. One handle exists per service;
// the underlying tmux session is addressed purely by name.
type Handle struct {
	Name  string
	State State
	// Reused is true when Ensure found a session from a previous boot
	// attempt instead of creating a new one.
	Reused bool
}

// Options control session geometry and scrollback.
type Options struct {
	Width        int
	Height       int
	HistoryLimit int
}

// DefaultOptions returns sensible defaults for service sessions.
func DefaultOptions() Options {
	return Options{
		Width:        200,
		Height:       50,
		HistoryLimit: 50000,
	}
}

// Manager creates and addresses durable sessions on one tmux socket.
// It is the sole owner of session state within the supervisor; the boot
// sequence drives it from a single goroutine.
type Manager struct {
	socket string
	opts   Options
	log    *logging.Logger
}

// NewManager returns a Manager on the default supervisor socket.
func NewManager(opts Options, log *logging.Logger) *Manager {
	return NewManagerWithSocket(SocketName, opts, log)
}

// NewManagerWithSocket returns a Manager on a custom socket name.
func NewManagerWithSocket(socket string, opts Options, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Manager{socket: socket, opts: opts, log: log}
}

// Socket returns the tmux socket name this manager operates on.
func (m *Manager) Socket() string {
	return m.socket
}

// Ensure returns a handle to the named session, creating a new detached
// session if none exists. Reusing an existing session is not an error:
// the whole boot sequence must be safe to re-run against a live fleet.
func (m *Manager) Ensure(ctx context.Context, name string) (*Handle, error) {
	if m.Exists(ctx, name) {
		m.log.Debug("reusing existing session", "session", name)
		return &Handle{Name: name, State: StateDetached, Reused: true}, nil
	}

	createCmd := CommandContextWithSocket(ctx, m.socket,
		"new-session",
		"-d",
		"-s", name,
		"-x", fmt.Sprintf("%d", m.opts.Width),
		"-y", fmt.Sprintf("%d", m.opts.Height),
	)
	// Sessions inherit the supervisor's environment; the propagator then
	// narrows what the service command actually sees.
	createCmd.Env = append(os.Environ(), "TERM=xterm-256color")
	if err := createCmd.Run(); err != nil {
		return nil, errors.NewSessionError("failed to create session", err).WithSession(name)
	}

	// Session options are best-effort; the session works without them.
	if err := CommandWithSocket(m.socket, "set-option", "-t", name,
		"history-limit", fmt.Sprintf("%d", m.opts.HistoryLimit)).Run(); err != nil {
		m.log.Warn("failed to set history-limit", "session", name, "error", err)
	}
	if err := CommandWithSocket(m.socket, "set-option", "-t", name,
		"default-terminal", "xterm-256color").Run(); err != nil {
		m.log.Warn("failed to set default-terminal", "session", name, "error", err)
	}

	m.log.Debug("created session", "session", name)
	return &Handle{Name: name, State: StateCreated}, nil
}

// SendCommand submits a command line to the session's primary pane as if
// typed interactively, followed by Enter. It returns once the keys are
// submitted and never waits for the command to complete; whatever the
// command does afterwards belongs to the service, not the supervisor.
func (m *Manager) SendCommand(ctx context.Context, name, commandLine string) error {
	sendCmd := CommandContextWithSocket(ctx, m.socket,
		"send-keys",
		"-t", name,
		commandLine,
		"Enter",
	)
	if err := sendCmd.Run(); err != nil {
		return errors.NewSessionError("failed to send command", err).WithSession(name)
	}
	return nil
}

// SetEnv publishes a session-scoped environment variable. Every command
// run in the session afterwards, including commands typed by an operator
// after reattaching, sees the variable. Setting the same key twice
// overwrites, so publication is idempotent.
func (m *Manager) SetEnv(ctx context.Context, name, key, value string) error {
	setCmd := CommandContextWithSocket(ctx, m.socket,
		"set-environment",
		"-t", name,
		key, value,
	)
	if err := setCmd.Run(); err != nil {
		return errors.NewSessionError("failed to set environment variable", err).WithSession(name)
	}
	return nil
}

// Exists reports whether a session with the given name exists on the socket.
func (m *Manager) Exists(ctx context.Context, name string) bool {
	return CommandContextWithSocket(ctx, m.socket, "has-session", "-t", name).Run() == nil
}

// State probes the current state of the named session.
func (m *Manager) State(ctx context.Context, name string) State {
	out, err := CommandContextWithSocket(ctx, m.socket,
		"display-message", "-t", name, "-p", "#{session_attached}").Output()
	if err != nil {
		return StateDead
	}
	if strings.TrimSpace(string(out)) != "0" {
		return StateRunning
	}
	return StateDetached
}

// List returns the names of all sessions on the supervisor socket.
// A missing server means no sessions, not an error.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	out, err := CommandContextWithSocket(ctx, m.socket,
		"list-sessions", "-F", "#{session_name}").Output()
	if err != nil {
		if isSessionNotFoundError(err) {
			return nil, nil
		}
		// list-sessions also fails with a non-zero exit when the server
		// has never started; treat any failure here as an empty fleet.
		return nil, nil
	}

	var sessions []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			sessions = append(sessions, line)
		}
	}
	return sessions, nil
}
