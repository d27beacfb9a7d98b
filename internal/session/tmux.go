// Package session hosts each supervised service in a durable, named tmux
// session. Sessions live on a dedicated socket so the supervisor's fleet
// is isolated from any personal tmux server on the host, while operators
// can still attach to any service by name at any time:
//
//	tmux -L bosun attach -t video
//
// Sessions outlive the supervisor process. Nothing in this package ever
// kills a session; once a service is launched it keeps running until the
// host reboots or an operator intervenes.
package session

import (
	"context"
	"os/exec"
	"strings"
)

// SocketName is the tmux socket all supervisor sessions live on.
const SocketName = "bosun"

// Command creates an exec.Cmd for tmux on the default supervisor socket.
func Command(args ...string) *exec.Cmd {
	return CommandWithSocket(SocketName, args...)
}

// CommandContext creates a context-aware exec.Cmd for tmux on the default
// supervisor socket.
func CommandContext(ctx context.Context, args ...string) *exec.Cmd {
	return CommandContextWithSocket(ctx, SocketName, args...)
}

// CommandWithSocket creates an exec.Cmd for tmux with a custom socket name.
func CommandWithSocket(socket string, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-L", socket}, args...)
	return exec.Command("tmux", fullArgs...)
}

// CommandContextWithSocket creates a context-aware exec.Cmd with a custom socket.
func CommandContextWithSocket(ctx context.Context, socket string, args ...string) *exec.Cmd {
	fullArgs := append([]string{"-L", socket}, args...)
	return exec.CommandContext(ctx, "tmux", fullArgs...)
}

// CommandArgs returns the arguments needed to run a tmux command on the
// default supervisor socket. Use this when building the command string
// for display purposes.
func CommandArgs(args ...string) []string {
	return append([]string{"-L", SocketName}, args...)
}

// AttachCommand returns the shell command an operator runs to attach to
// the named session.
func AttachCommand(name string) string {
	return "tmux -L " + SocketName + " attach -t " + name
}

// isSessionNotFoundError reports whether the error output indicates a
// missing tmux session or server. Both are expected when probing for a
// session that was never created.
func isSessionNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "session not found") ||
		strings.Contains(errStr, "no server running") ||
		strings.Contains(errStr, "can't find session")
}
