package resolver

import (
	"context"
	"log/slog"
	"sort"

	"github.com/roach88/devpolicy/internal/policy"
)

// Binder is the slice of the registry the resolver mutates.
// *policy.Registry implements it.
type Binder interface {
	Bind(b policy.Binding, uid int)
	UIDOf(b policy.Binding) int
	SetReady(ready bool)
}

// PackageLookup resolves a package name to its current uid.
type PackageLookup interface {
	LookupUID(pkg string) (int, bool)
}

// StaticLookup is a PackageLookup over a fixed name→uid table.
type StaticLookup map[string]int

// LookupUID implements PackageLookup. Names are normalized before lookup.
func (s StaticLookup) LookupUID(pkg string) (int, bool) {
	want := NormalizePackage(pkg)
	for name, uid := range s {
		if NormalizePackage(name) == want {
			return uid, true
		}
	}
	return 0, false
}

// Recorder receives per-event telemetry. *metrics.Metrics implements it.
type Recorder interface {
	EventProcessed(kind, outcome string)
	BindingChanged(binding string)
}

type nopRecorder struct{}

func (nopRecorder) EventProcessed(string, string) {}
func (nopRecorder) BindingChanged(string)         {}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// WithIDGenerator overrides the event ID generator (default UUIDv7).
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Resolver) { r.ids = g }
}

// WithSequencer overrides the logical clock.
func WithSequencer(s Sequencer) Option {
	return func(r *Resolver) { r.clock = s }
}

// Resolver applies package-resolution events to a Binder.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Process(): must not run concurrently with Run or itself
type Resolver struct {
	binder   Binder
	packages map[string]policy.Binding // normalized package name → binding

	clock    Sequencer
	ids      IDGenerator
	queue    *eventQueue
	logger   *slog.Logger
	recorder Recorder
}

// New creates a Resolver that binds each configured package name to its
// binding. Bindings with an empty package name are never bound.
func New(binder Binder, packages map[policy.Binding]string, opts ...Option) *Resolver {
	r := &Resolver{
		binder:   binder,
		packages: make(map[string]policy.Binding, len(packages)),
		clock:    NewClock(),
		ids:      UUIDv7Generator{},
		queue:    newEventQueue(),
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for b, pkg := range packages {
		if name := NormalizePackage(pkg); name != "" {
			r.packages[name] = b
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Packages returns the configured package name of every binding.
func (r *Resolver) Packages() map[policy.Binding]string {
	out := make(map[policy.Binding]string, len(r.packages))
	for name, b := range r.packages {
		out[b] = name
	}
	return out
}

// stamp assigns an ID and seq to events that lack them.
func (r *Resolver) stamp(ev Event) Event {
	if ev.ID == "" {
		ev.ID = r.ids.Generate()
	}
	if ev.Seq == 0 {
		ev.Seq = r.clock.Next()
	}
	return ev
}

// Enqueue stamps ev and submits it for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the resolver has been stopped.
func (r *Resolver) Enqueue(ev Event) bool {
	return r.queue.Enqueue(r.stamp(ev))
}

// Pending returns the number of queued events.
func (r *Resolver) Pending() int {
	return r.queue.Len()
}

// Run starts the single-writer event loop.
// Blocks until ctx is cancelled or Stop() is called; after Stop, queued
// events are drained before Run returns nil.
func (r *Resolver) Run(ctx context.Context) error {
	r.logger.Info("resolver starting", "packages", len(r.packages))

	for {
		if ev, ok := r.queue.TryDequeue(); ok {
			if _, err := r.Process(ctx, ev); err != nil {
				r.logger.Error("event rejected",
					"id", ev.ID,
					"seq", ev.Seq,
					"kind", ev.Kind,
					"package", ev.Package,
					"uid", ev.UID,
					"error", err,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			r.logger.Info("resolver stopping: context cancelled")
			r.queue.Close()
			return ctx.Err()

		case <-r.queue.Wait():
			// The signal channel closes when the queue is closed,
			// so this fires immediately after Stop.
			if r.queue.closedAndEmpty() {
				r.logger.Info("resolver stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue; Run drains what is left and returns.
func (r *Resolver) Stop() {
	r.queue.Close()
}

// Process applies one event synchronously and reports what it did.
func (r *Resolver) Process(ctx context.Context, ev Event) (Outcome, error) {
	ev = r.stamp(ev)

	if err := ev.validate(); err != nil {
		r.recorder.EventProcessed(string(ev.Kind), string(OutcomeInvalid))
		return OutcomeInvalid, err
	}

	outcome := r.apply(ev)
	r.recorder.EventProcessed(string(ev.Kind), string(outcome))

	r.logger.Debug("event processed",
		"id", ev.ID,
		"seq", ev.Seq,
		"kind", ev.Kind,
		"package", ev.Package,
		"outcome", outcome,
	)
	return outcome, nil
}

func (r *Resolver) apply(ev Event) Outcome {
	if ev.Kind == KindBootCompleted {
		r.binder.SetReady(true)
		return OutcomeReady
	}

	b, ok := r.packages[NormalizePackage(ev.Package)]
	if !ok {
		return OutcomeIgnored
	}

	uid := ev.UID
	outcome := OutcomeBound
	if ev.Kind == KindPackageRemoved {
		uid = policy.Unbound
		outcome = OutcomeUnbound
	}

	if r.binder.UIDOf(b) != uid {
		r.binder.Bind(b, uid)
		r.recorder.BindingChanged(b.String())
		r.logger.Info("binding resolved", "binding", b.String(), "package", ev.Package, "uid", uid)
	}
	return outcome
}

// ResolveInitial binds every configured package from lookup. Packages the
// lookup does not know are bound to policy.Unbound. Returns the resulting
// uid per binding.
func (r *Resolver) ResolveInitial(lookup PackageLookup) map[policy.Binding]int {
	names := make([]string, 0, len(r.packages))
	for name := range r.packages {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[policy.Binding]int, len(names))
	for _, name := range names {
		b := r.packages[name]
		uid, ok := lookup.LookupUID(name)
		if !ok || uid < 0 {
			uid = policy.Unbound
		}
		if r.binder.UIDOf(b) != uid {
			r.binder.Bind(b, uid)
			r.recorder.BindingChanged(b.String())
		}
		out[b] = uid
		r.logger.Info("initial binding", "binding", b.String(), "package", name, "uid", uid)
	}
	return out
}
