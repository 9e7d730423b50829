package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/devpolicy/internal/config"
	"github.com/roach88/devpolicy/internal/policy"
	"github.com/roach88/devpolicy/internal/resolver"
	"github.com/roach88/devpolicy/internal/settings"
	"github.com/roach88/devpolicy/internal/store"
	"github.com/roach88/devpolicy/internal/testutil"
)

// SourceScenario is the settings_history source of scenario writes.
const SourceScenario = "scenario"

// Harness is the scenario execution context.
type Harness struct {
	store    *store.Store
	registry *policy.Registry
	resolver *resolver.Resolver
	clock    *testutil.DeterministicClock
	ids      *testutil.FixedIDGenerator
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. The returned error is
// reserved for infrastructure failures; failed expectations are reported in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if len(scenario.Settings) > 0 {
		defaults := make(settings.Values, len(scenario.Settings))
		for k, v := range scenario.Settings {
			defaults[settings.Key(k)] = v
		}
		if _, err := st.SeedDefaults(ctx, defaults); err != nil {
			return nil, fmt.Errorf("failed to seed settings: %w", err)
		}
	}

	reg := policy.New(policy.WithLogger(logger))
	reg.Initialize(policy.PlaceholderCollaborators(st.Settings()))

	clock := testutil.NewDeterministicClock()
	ids := testutil.NewFixedIDGenerator("evt")

	h := &Harness{
		store:    st,
		registry: reg,
		resolver: resolver.New(reg, scenarioBindings(scenario),
			resolver.WithLogger(logger),
			resolver.WithIDGenerator(ids),
			resolver.WithSequencer(clock),
		),
		clock: clock,
		ids:   ids,
	}

	h.resolver.ResolveInitial(resolver.StaticLookup(scenario.Packages))

	result := NewResult()
	result.Initial = reg.Snapshot()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i+1, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return result, nil
}

// scenarioBindings overlays the scenario's bindings on the config defaults.
func scenarioBindings(s *Scenario) map[policy.Binding]string {
	bindings := config.Default().Bindings()
	for name, pkg := range s.Bindings {
		if b, ok := policy.ParseBinding(name); ok {
			bindings[b] = pkg
		}
	}
	return bindings
}

func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) error {
	switch {
	case step.Event != nil:
		h.executeEvent(ctx, n, step, result)
		return nil
	case step.Setting != nil:
		return h.executeSetting(ctx, n, *step.Setting, result)
	case step.Expect != nil:
		for _, msg := range checkExpect(h.registry, *step.Expect) {
			result.AddError(fmt.Sprintf("step %d: %s", n, msg))
		}
		return nil
	default:
		return fmt.Errorf("empty step")
	}
}

// executeEvent stamps the event itself so the trace carries its ID and seq.
func (h *Harness) executeEvent(ctx context.Context, n int, step Step, result *Result) {
	ev := resolver.Event{
		ID:      h.ids.Generate(),
		Seq:     h.clock.Next(),
		Kind:    resolver.Kind(step.Event.Kind),
		Package: step.Event.Package,
		UID:     step.Event.UID,
	}

	outcome, err := h.resolver.Process(ctx, ev)

	entry := TraceEntry{
		Step:    n,
		Type:    TraceEvent,
		Seq:     ev.Seq,
		ID:      ev.ID,
		Kind:    string(ev.Kind),
		Package: ev.Package,
		Outcome: string(outcome),
	}
	switch ev.Kind {
	case resolver.KindPackageAdded, resolver.KindPackageUpdated:
		uid := ev.UID
		entry.UID = &uid
	}
	if err != nil {
		entry.Error = err.Error()
	}
	entry.State = h.registry.Snapshot()
	result.Trace = append(result.Trace, entry)

	switch {
	case step.Outcome != "" && string(outcome) != step.Outcome:
		result.AddError(fmt.Sprintf("step %d: expected outcome %s, got %s", n, step.Outcome, outcome))
	case step.Outcome == "" && err != nil:
		result.AddError(fmt.Sprintf("step %d: event rejected: %v", n, err))
	}
}

func (h *Harness) executeSetting(ctx context.Context, n int, s SettingStep, result *Result) error {
	key := settings.Key(s.Key)
	seq, err := h.store.SetSetting(ctx, key, *s.Value, SourceScenario)
	if err != nil {
		return err
	}

	value := *s.Value
	result.Trace = append(result.Trace, TraceEntry{
		Step:  n,
		Type:  TraceSetting,
		Seq:   seq,
		Key:   s.Key,
		Value: &value,
		State: h.registry.Snapshot(),
	})
	return nil
}
