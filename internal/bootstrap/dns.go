package bootstrap

import (
	"context"
	"os"

	"github.com/tridentos/bosun/internal/errors"
)

// Default resolver paths. The host-provided file is bind-mounted into
// the container by the surrounding system; the local file is the one the
// container's resolver library actually reads.
const (
	DefaultHostResolvPath  = "/etc/resolv.conf.host"
	DefaultLocalResolvPath = "/etc/resolv.conf"
)

// DNSLinkStep replaces the container-local resolver file with a symlink
// to the host-provided one, so host DNS changes are observed live. If
// the host file is absent the local resolver may go stale, but the boot
// proceeds.
type DNSLinkStep struct {
	HostPath  string
	LocalPath string
}

// NewDNSLinkStep returns the step with default resolver paths.
func NewDNSLinkStep() *DNSLinkStep {
	return &DNSLinkStep{
		HostPath:  DefaultHostResolvPath,
		LocalPath: DefaultLocalResolvPath,
	}
}

// Name implements Step.
func (s *DNSLinkStep) Name() string { return "dns-link" }

// Run implements Step. The local file is typically a bind-mounted copy
// that must be removed before the link can be created. Removal and link
// failures on an existing host file are fatal.
func (s *DNSLinkStep) Run(ctx context.Context) (Result, error) {
	if _, err := os.Stat(s.HostPath); err != nil {
		if os.IsNotExist(err) {
			return skipped("host resolver file not present at " + s.HostPath), nil
		}
		return Result{}, errors.NewBootstrapError("failed to stat host resolver file", err).WithStep(s.Name())
	}

	// Already linked to the right target from a previous run.
	if target, err := os.Readlink(s.LocalPath); err == nil && target == s.HostPath {
		return applied(s.LocalPath + " already linked to " + s.HostPath), nil
	}

	if err := os.Remove(s.LocalPath); err != nil && !os.IsNotExist(err) {
		return Result{}, errors.NewBootstrapError("failed to remove local resolver file", err).WithStep(s.Name())
	}
	if err := os.Symlink(s.HostPath, s.LocalPath); err != nil {
		return Result{}, errors.NewBootstrapError("failed to link resolver file", err).WithStep(s.Name())
	}
	return applied("linked " + s.LocalPath + " -> " + s.HostPath), nil
}
