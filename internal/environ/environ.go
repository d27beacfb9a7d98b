// Package environ computes and publishes the subset of the supervisor's
// environment that services are allowed to see. Only variables carrying
// the MAVLink domain prefix are propagated into sessions; everything
// else in the host environment is deliberately withheld.
package environ

import (
	"context"
	"sort"
	"strings"

	"github.com/tridentos/bosun/internal/logging"
)

// DefaultPrefix is the variable-name prefix that marks a variable as
// part of the MAVLink configuration contract with the services, e.g.
// MAV_SYSTEM_ID and MAV_COMPONENT_ID.
const DefaultPrefix = "MAV_"

// Snapshot is a filtered set of environment variables. Keys have no
// ordering dependency among each other; no value may reference another
// variable through this mechanism.
type Snapshot map[string]string

// Filter reduces a raw environment (the "KEY=value" form returned by
// os.Environ) to the entries whose key starts with prefix. The input is
// injected rather than read from the process globally so the filter is
// testable in isolation.
func Filter(environment []string, prefix string) Snapshot {
	snap := make(Snapshot)
	for _, entry := range environment {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			snap[key] = value
		}
	}
	return snap
}

// Keys returns the snapshot's keys in sorted order, for stable logs and
// display output.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Setter publishes one session-scoped variable. session.Manager
// implements it.
type Setter interface {
	SetEnv(ctx context.Context, session, key, value string) error
}

// Publisher pushes snapshots into sessions before their service command
// is sent.
type Publisher struct {
	setter Setter
	log    *logging.Logger
}

// NewPublisher returns a Publisher that writes variables through setter.
func NewPublisher(setter Setter, log *logging.Logger) *Publisher {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Publisher{setter: setter, log: log}
}

// Publish sets every snapshot entry in the named session's scope.
// Publication order is irrelevant; keys are walked in sorted order only
// so repeated runs produce identical logs. Publishing the same snapshot
// twice is a no-op for the session's visible variable set.
func (p *Publisher) Publish(ctx context.Context, session string, snap Snapshot) error {
	for _, key := range snap.Keys() {
		if err := p.setter.SetEnv(ctx, session, key, snap[key]); err != nil {
			return err
		}
		p.log.Debug("published variable", "session", session, "key", key)
	}
	return nil
}
