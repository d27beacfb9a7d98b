package scheduler

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/tridentos/bosun/internal/bootstrap"
	"github.com/tridentos/bosun/internal/environ"
	"github.com/tridentos/bosun/internal/errors"
	"github.com/tridentos/bosun/internal/registry"
	"github.com/tridentos/bosun/internal/session"
)

// fakeFleet records every session operation in a single ordered trace so
// tests can assert cross-component ordering.
type fakeFleet struct {
	trace    []string
	sessions map[string]bool
}

func newFakeFleet() *fakeFleet {
	return &fakeFleet{sessions: make(map[string]bool)}
}

func (f *fakeFleet) Ensure(_ context.Context, name string) (*session.Handle, error) {
	if f.sessions[name] {
		f.trace = append(f.trace, "reuse "+name)
		return &session.Handle{Name: name, State: session.StateDetached, Reused: true}, nil
	}
	f.sessions[name] = true
	f.trace = append(f.trace, "create "+name)
	return &session.Handle{Name: name, State: session.StateCreated}, nil
}

func (f *fakeFleet) SendCommand(_ context.Context, name, commandLine string) error {
	f.trace = append(f.trace, fmt.Sprintf("send %s %s", name, commandLine))
	return nil
}

func (f *fakeFleet) Publish(_ context.Context, name string, snap environ.Snapshot) error {
	f.trace = append(f.trace, fmt.Sprintf("publish %s %v", name, snap.Keys()))
	return nil
}

// fakeBootstrap implements Bootstrapper.
type fakeBootstrap struct {
	err  error
	runs int
}

func (b *fakeBootstrap) Run(context.Context) ([]bootstrap.StepOutcome, error) {
	b.runs++
	return nil, b.err
}

func mustRegistry(t *testing.T, specs []registry.ServiceSpec) *registry.Registry {
	t.Helper()
	r, err := registry.Load(specs)
	if err != nil {
		t.Fatalf("registry.Load() error = %v", err)
	}
	return r
}

// newTestScheduler builds a scheduler over the fake fleet with a
// recording sleep function.
func newTestScheduler(t *testing.T, fleet *fakeFleet, reg *registry.Registry, boot Bootstrapper) *Scheduler {
	t.Helper()
	s := New(Config{
		Registry:    reg,
		Sessions:    fleet,
		Publisher:   fleet,
		Bootstrap:   boot,
		Environment: []string{"FOO=1", "MAV_SYSTEM_ID=1", "MAV_COMPONENT_ID=194"},
		EnvPrefix:   "MAV_",
		SettleDelay: 45 * time.Second,
	})
	s.sleep = func(_ context.Context, d time.Duration) error {
		fleet.trace = append(fleet.trace, "settle "+d.String())
		return nil
	}
	return s
}

func TestRunObservableOrder(t *testing.T) {
	fleet := newFakeFleet()
	reg := mustRegistry(t, []registry.ServiceSpec{
		{Name: "video", Command: "cmd_v", Tier: registry.TierPriority},
		{Name: "helper", Command: "cmd_h", Tier: registry.TierStandard},
	})

	s := newTestScheduler(t, fleet, reg, &fakeBootstrap{})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"create video",
		"publish video [MAV_COMPONENT_ID MAV_SYSTEM_ID]",
		"send video cmd_v",
		"settle 45s",
		"create helper",
		"publish helper [MAV_COMPONENT_ID MAV_SYSTEM_ID]",
		"send helper cmd_h",
	}
	if !reflect.DeepEqual(fleet.trace, want) {
		t.Errorf("trace = %v, want %v", fleet.trace, want)
	}

	if s.Phase() != PhaseComplete {
		t.Errorf("Phase() = %v, want PhaseComplete", s.Phase())
	}
}

func TestAllPriorityCommandsSentBeforeAnyStandardSessionExists(t *testing.T) {
	fleet := newFakeFleet()
	reg := mustRegistry(t, []registry.ServiceSpec{
		{Name: "mavlink-router", Command: "routerd", Tier: registry.TierPriority},
		{Name: "video", Command: "streamd", Tier: registry.TierPriority},
		{Name: "beacon", Command: "beacond", Tier: registry.TierStandard},
	})

	s := newTestScheduler(t, fleet, reg, &fakeBootstrap{})
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lastPrioritySend, firstStandardCreate := -1, -1
	for i, ev := range fleet.trace {
		switch ev {
		case "send video streamd", "send mavlink-router routerd":
			if i > lastPrioritySend {
				lastPrioritySend = i
			}
		case "create beacon":
			firstStandardCreate = i
		}
	}
	if lastPrioritySend == -1 || firstStandardCreate == -1 {
		t.Fatalf("trace missing expected events: %v", fleet.trace)
	}
	if lastPrioritySend > firstStandardCreate {
		t.Errorf("standard session created before priority commands finished: %v", fleet.trace)
	}
}

func TestBootstrapFailureAbortsBeforeAnySession(t *testing.T) {
	fleet := newFakeFleet()
	reg := mustRegistry(t, []registry.ServiceSpec{
		{Name: "video", Command: "cmd_v", Tier: registry.TierPriority},
	})
	boot := &fakeBootstrap{err: errors.NewBootstrapError("chmod failed", nil).WithStep("docker-socket")}

	s := newTestScheduler(t, fleet, reg, boot)
	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when bootstrap fails")
	}
	if !errors.Is(err, errors.ErrBootstrapFailed) {
		t.Errorf("error = %v, want ErrBootstrapFailed", err)
	}
	if len(fleet.trace) != 0 {
		t.Errorf("no session operations should happen, got %v", fleet.trace)
	}
	if s.Phase() != PhaseInit {
		t.Errorf("Phase() = %v, want PhaseInit", s.Phase())
	}
}

func TestNilBootstrapSkipsHostPreparation(t *testing.T) {
	fleet := newFakeFleet()
	reg := mustRegistry(t, []registry.ServiceSpec{
		{Name: "video", Command: "cmd_v", Tier: registry.TierPriority},
	})

	s := newTestScheduler(t, fleet, reg, nil)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.Phase() != PhaseComplete {
		t.Errorf("Phase() = %v, want PhaseComplete", s.Phase())
	}
}

func TestRerunReusesSessionsWithoutError(t *testing.T) {
	fleet := newFakeFleet()
	reg := mustRegistry(t, []registry.ServiceSpec{
		{Name: "video", Command: "cmd_v", Tier: registry.TierPriority},
		{Name: "helper", Command: "cmd_h", Tier: registry.TierStandard},
	})
	boot := &fakeBootstrap{}

	first := newTestScheduler(t, fleet, reg, boot)
	if err := first.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	second := newTestScheduler(t, fleet, reg, boot)
	if err := second.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	creates, reuses := 0, 0
	for _, ev := range fleet.trace {
		switch {
		case ev == "create video" || ev == "create helper":
			creates++
		case ev == "reuse video" || ev == "reuse helper":
			reuses++
		}
	}
	if creates != 2 {
		t.Errorf("creates = %d, want 2 (one per service across both runs)", creates)
	}
	if reuses != 2 {
		t.Errorf("reuses = %d, want 2", reuses)
	}
	if boot.runs != 2 {
		t.Errorf("bootstrap runs = %d, want 2", boot.runs)
	}
}

func TestOnLaunchCallback(t *testing.T) {
	fleet := newFakeFleet()
	reg := mustRegistry(t, []registry.ServiceSpec{
		{Name: "video", Command: "cmd_v", Tier: registry.TierPriority},
		{Name: "helper", Command: "cmd_h", Tier: registry.TierStandard},
	})

	var launched []string
	s := newTestScheduler(t, fleet, reg, &fakeBootstrap{})
	s.cfg.OnLaunch = func(spec registry.ServiceSpec) {
		launched = append(launched, spec.Name)
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"video", "helper"}
	if !reflect.DeepEqual(launched, want) {
		t.Errorf("launched = %v, want %v", launched, want)
	}
}

func TestCancelDuringSettleStopsStandardTier(t *testing.T) {
	fleet := newFakeFleet()
	reg := mustRegistry(t, []registry.ServiceSpec{
		{Name: "video", Command: "cmd_v", Tier: registry.TierPriority},
		{Name: "helper", Command: "cmd_h", Tier: registry.TierStandard},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := newTestScheduler(t, fleet, reg, &fakeBootstrap{})
	s.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}

	err := s.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	for _, ev := range fleet.trace {
		if ev == "create helper" {
			t.Errorf("standard tier launched despite cancellation: %v", fleet.trace)
		}
	}
	if s.Phase() != PhaseSettling {
		t.Errorf("Phase() = %v, want PhaseSettling", s.Phase())
	}
}

func TestSleepCtx(t *testing.T) {
	start := time.Now()
	if err := sleepCtx(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("sleepCtx() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("sleepCtx returned after %v, want >= 10ms", elapsed)
	}

	if err := sleepCtx(context.Background(), 0); err != nil {
		t.Errorf("sleepCtx(0) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepCtx on cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseInit, "init"},
		{PhaseBootstrapDone, "bootstrap-done"},
		{PhasePriorityLaunching, "priority-launching"},
		{PhaseSettling, "settling"},
		{PhaseStandardLaunching, "standard-launching"},
		{PhaseComplete, "complete"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
