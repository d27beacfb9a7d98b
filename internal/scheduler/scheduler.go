// Package scheduler drives the boot sequence: bootstrap the host, launch
// the priority tier one service at a time, wait a fixed settle interval,
// then launch the standard tier. The scheduler is single-threaded and
// synchronous; fleet concurrency comes from each service running in its
// own detached session, not from the supervisor's control flow.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/tridentos/bosun/internal/bootstrap"
	"github.com/tridentos/bosun/internal/environ"
	"github.com/tridentos/bosun/internal/errors"
	"github.com/tridentos/bosun/internal/logging"
	"github.com/tridentos/bosun/internal/registry"
	"github.com/tridentos/bosun/internal/session"
)

// Phase is the scheduler's position in the boot sequence.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseBootstrapDone
	PhasePriorityLaunching
	PhaseSettling
	PhaseStandardLaunching
	PhaseComplete
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseBootstrapDone:
		return "bootstrap-done"
	case PhasePriorityLaunching:
		return "priority-launching"
	case PhaseSettling:
		return "settling"
	case PhaseStandardLaunching:
		return "standard-launching"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Launcher is the slice of the session manager the scheduler needs.
// session.Manager implements it.
type Launcher interface {
	Ensure(ctx context.Context, name string) (*session.Handle, error)
	SendCommand(ctx context.Context, name, commandLine string) error
}

// Publisher pushes an environment snapshot into a session.
// environ.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, session string, snap environ.Snapshot) error
}

// Bootstrapper runs the host preparation steps.
// bootstrap.Runner implements it.
type Bootstrapper interface {
	Run(ctx context.Context) ([]bootstrap.StepOutcome, error)
}

// Config wires a Scheduler together.
type Config struct {
	Registry  *registry.Registry
	Sessions  Launcher
	Publisher Publisher
	// Bootstrap may be nil to skip host preparation (recovery re-runs
	// against an already-prepared host).
	Bootstrap Bootstrapper

	// Environment is the raw process environment ("KEY=value" entries)
	// the snapshot is filtered from.
	Environment []string
	// EnvPrefix selects which variables propagate into sessions.
	EnvPrefix string

	// SettleDelay is the pause between the last priority launch and the
	// first standard launch.
	SettleDelay time.Duration

	// OnLaunch, if set, is invoked after each service's command is sent.
	// It exists for operator-visible progress output; nothing depends on it.
	OnLaunch func(spec registry.ServiceSpec)

	Logger *logging.Logger
}

// Scheduler executes one boot sequence. It is not reusable; create a new
// one per run.
type Scheduler struct {
	cfg Config
	log *logging.Logger

	mu    sync.Mutex
	phase Phase

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Scheduler for the given configuration.
func New(cfg Config) *Scheduler {
	log := cfg.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	return &Scheduler{
		cfg:   cfg,
		log:   log,
		phase: PhaseInit,
		sleep: sleepCtx,
	}
}

// Phase returns the scheduler's current phase.
func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Scheduler) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
	s.log.Debug("phase change", "phase", p.String())
}

// Run executes the full boot sequence. Any error before the priority
// tier finishes bootstrap is fatal and stops forward progress
// immediately; a service command failing after it has been sent is the
// service's own problem and is invisible here.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.Bootstrap != nil {
		if _, err := s.cfg.Bootstrap.Run(ctx); err != nil {
			return errors.Wrap(err, "host bootstrap failed")
		}
	} else {
		s.log.Info("bootstrap skipped")
	}
	s.setPhase(PhaseBootstrapDone)

	// One snapshot serves every session: the environment is read-only
	// for the lifetime of the boot.
	snap := environ.Filter(s.cfg.Environment, s.cfg.EnvPrefix)
	s.log.Info("environment snapshot computed", "prefix", s.cfg.EnvPrefix, "keys", snap.Keys())

	s.setPhase(PhasePriorityLaunching)
	if err := s.launchTier(ctx, s.cfg.Registry.PriorityServices(), snap); err != nil {
		return err
	}

	s.setPhase(PhaseSettling)
	s.log.Info("settling before standard tier", "delay", s.cfg.SettleDelay.String())
	if err := s.sleep(ctx, s.cfg.SettleDelay); err != nil {
		return err
	}

	s.setPhase(PhaseStandardLaunching)
	if err := s.launchTier(ctx, s.cfg.Registry.StandardServices(), snap); err != nil {
		return err
	}

	s.setPhase(PhaseComplete)
	s.log.Info("boot sequence complete", "services", s.cfg.Registry.Len())
	return nil
}

// launchTier starts each service in registry order: ensure its session,
// publish the snapshot, send the command. Strictly one at a time; later
// services in a tier may assume earlier ones have begun initializing.
func (s *Scheduler) launchTier(ctx context.Context, specs []registry.ServiceSpec, snap environ.Snapshot) error {
	for _, spec := range specs {
		log := s.log.WithService(spec.Name)

		handle, err := s.cfg.Sessions.Ensure(ctx, spec.Name)
		if err != nil {
			return err
		}
		if handle.Reused {
			log.Info("session already exists, reusing")
		}

		if err := s.cfg.Publisher.Publish(ctx, spec.Name, snap); err != nil {
			return err
		}

		if err := s.cfg.Sessions.SendCommand(ctx, spec.Name, spec.Command); err != nil {
			return err
		}

		log.Info("service launched", "tier", spec.Tier.String(), "command", spec.Command)
		if s.cfg.OnLaunch != nil {
			s.cfg.OnLaunch(spec)
		}
	}
	return nil
}

// sleepCtx sleeps for d, returning early with the context error if the
// context is done first. Already-launched services are unaffected either way.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
