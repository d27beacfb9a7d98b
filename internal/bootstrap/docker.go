package bootstrap

import (
	"context"
	"os"

	"github.com/tridentos/bosun/internal/errors"
)

// DefaultDockerSocketPath is where the host's Docker daemon socket is
// bind-mounted into the container.
const DefaultDockerSocketPath = "/var/run/docker.sock"

// DockerSocketStep makes the Docker socket world-accessible so the
// reverse proxy can reach the daemon without running as root. Without
// the socket the proxy's container-management endpoints degrade, but the
// rest of the fleet boots normally.
type DockerSocketStep struct {
	SocketPath string
}

// NewDockerSocketStep returns the step with the default socket path.
func NewDockerSocketStep() *DockerSocketStep {
	return &DockerSocketStep{SocketPath: DefaultDockerSocketPath}
}

// Name implements Step.
func (s *DockerSocketStep) Name() string { return "docker-socket" }

// Run implements Step. A missing socket is a skip; a failed chmod on an
// existing socket is fatal.
func (s *DockerSocketStep) Run(ctx context.Context) (Result, error) {
	if _, err := os.Stat(s.SocketPath); err != nil {
		if os.IsNotExist(err) {
			return skipped("socket not present at " + s.SocketPath), nil
		}
		return Result{}, errors.NewBootstrapError("failed to stat docker socket", err).WithStep(s.Name())
	}

	if err := os.Chmod(s.SocketPath, 0o666); err != nil {
		return Result{}, errors.NewBootstrapError("failed to chmod docker socket", err).WithStep(s.Name())
	}
	return applied("made " + s.SocketPath + " world-accessible"), nil
}
