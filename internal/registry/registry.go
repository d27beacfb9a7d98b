// Package registry holds the static table of services the supervisor
// launches at boot. The table is configuration, not runtime state: it is
// validated once at load time and read-only afterwards. Order within a
// tier is launch order; the priority tier always launches before the
// standard tier.
package registry

import (
	"strings"

	"github.com/tridentos/bosun/internal/errors"
)

// Tier identifies one of the two ordered launch groups.
type Tier int

const (
	// TierPriority services launch first, before the settle delay.
	TierPriority Tier = iota
	// TierStandard services launch after the settle delay.
	TierStandard
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierPriority:
		return "priority"
	case TierStandard:
		return "standard"
	default:
		return "unknown"
	}
}

// ServiceSpec describes one service to launch: a unique name (also the
// session name) and the shell command line that starts it. Immutable
// once loaded.
type ServiceSpec struct {
	Name    string
	Command string
	Tier    Tier
}

// Registry is the validated, ordered service table.
type Registry struct {
	priority []ServiceSpec
	standard []ServiceSpec
}

// Load validates the given specs and builds a Registry. It fails fast on
// duplicate names (across both tiers), empty commands, and names that
// cannot serve as session names.
func Load(specs []ServiceSpec) (*Registry, error) {
	r := &Registry{}
	seen := make(map[string]bool, len(specs))

	for _, spec := range specs {
		if err := validateName(spec.Name); err != nil {
			return nil, err
		}
		if seen[spec.Name] {
			return nil, errors.NewValidationError("service name appears more than once").
				WithField("name").
				WithValue(spec.Name).
				WithCause(errors.ErrDuplicateService)
		}
		seen[spec.Name] = true

		if strings.TrimSpace(spec.Command) == "" {
			return nil, errors.NewValidationError("service has no launch command").
				WithField("command").
				WithValue(spec.Name).
				WithCause(errors.ErrEmptyCommand)
		}

		switch spec.Tier {
		case TierPriority:
			r.priority = append(r.priority, spec)
		case TierStandard:
			r.standard = append(r.standard, spec)
		default:
			return nil, errors.NewValidationError("unknown tier").
				WithField("tier").
				WithValue(int(spec.Tier)).
				WithCause(errors.ErrInvalidServiceName)
		}
	}

	return r, nil
}

// validateName rejects names that tmux cannot address as sessions.
// Dots and colons are target-syntax separators in tmux; whitespace makes
// the name unusable from operator shells.
func validateName(name string) error {
	if name == "" {
		return errors.NewValidationError("service name is empty").
			WithField("name").
			WithCause(errors.ErrInvalidServiceName)
	}
	if strings.ContainsAny(name, ".: \t\n") {
		return errors.NewValidationError("service name contains characters unusable in a session name").
			WithField("name").
			WithValue(name).
			WithCause(errors.ErrInvalidServiceName)
	}
	return nil
}

// PriorityServices returns the priority tier in launch order.
// The returned slice is a copy; the registry itself never changes.
func (r *Registry) PriorityServices() []ServiceSpec {
	out := make([]ServiceSpec, len(r.priority))
	copy(out, r.priority)
	return out
}

// StandardServices returns the standard tier in launch order.
// The returned slice is a copy; the registry itself never changes.
func (r *Registry) StandardServices() []ServiceSpec {
	out := make([]ServiceSpec, len(r.standard))
	copy(out, r.standard)
	return out
}

// All returns every service, priority tier first, in launch order.
func (r *Registry) All() []ServiceSpec {
	out := make([]ServiceSpec, 0, len(r.priority)+len(r.standard))
	out = append(out, r.priority...)
	out = append(out, r.standard...)
	return out
}

// Lookup returns the spec for the named service.
func (r *Registry) Lookup(name string) (ServiceSpec, bool) {
	for _, spec := range r.All() {
		if spec.Name == name {
			return spec, true
		}
	}
	return ServiceSpec{}, false
}

// Len returns the total number of registered services.
func (r *Registry) Len() int {
	return len(r.priority) + len(r.standard)
}
