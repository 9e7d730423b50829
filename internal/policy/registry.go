package policy

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Binding names one identity slot held by the registry.
type Binding int

const (
	// PrivilegedApp is the privileged (GMS-equivalent) app.
	PrivilegedApp Binding = iota + 1
	// AudioEnhancementApp is the vendor audio-enhancement app.
	AudioEnhancementApp
)

// Bindings lists every binding in a stable order.
var Bindings = []Binding{PrivilegedApp, AudioEnhancementApp}

// String returns the binding name used in config, logs and metrics.
func (b Binding) String() string {
	switch b {
	case PrivilegedApp:
		return "privileged"
	case AudioEnhancementApp:
		return "audio_enhancement"
	default:
		return fmt.Sprintf("binding(%d)", int(b))
	}
}

// ParseBinding returns the binding whose String() is name.
func ParseBinding(name string) (Binding, bool) {
	for _, b := range Bindings {
		if b.String() == name {
			return b, true
		}
	}
	return 0, false
}

// Readiness is the boot state of the host.
type Readiness int

const (
	NotReady Readiness = iota
	Ready
)

func (r Readiness) String() string {
	if r == Ready {
		return "ready"
	}
	return "not_ready"
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// Registry is the device-policy state registry.
//
// Thread-safety model:
//   - Initialize(): startup goroutine only, before concurrent traffic
//   - SetReady()/Ready(): lock-free, safe from any goroutine
//   - everything else: safe from any goroutine, serialized by mu
//
// INVARIANTS:
//   - app IDs are derived from the stored uid inside the same critical
//     section, never cached
//   - readiness never goes from Ready back to NotReady
type Registry struct {
	mu            sync.Mutex
	privilegedUID int
	audioUID      int
	collab        Collaborators

	ready atomic.Bool

	logger *slog.Logger
}

// New creates an unbound, not-ready registry with no collaborators.
func New(opts ...Option) *Registry {
	r := &Registry{
		privilegedUID: Unbound,
		audioUID:      Unbound,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize binds the external collaborators.
//
// Must be called once from the startup goroutine before any concurrent use.
// A second call rebinds; it is not guarded against concurrent callers.
func (r *Registry) Initialize(c Collaborators) {
	r.mu.Lock()
	r.collab = c
	r.mu.Unlock()

	r.logger.Info("policy registry initialized",
		"subsystems", c.names(),
		"settings", c.Settings != nil,
	)
}

// Collaborators returns the references bound at Initialize.
func (r *Registry) Collaborators() Collaborators {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collab
}

// SetReady records that the host finished booting.
//
// Only the first SetReady(true) changes state. SetReady(false) is ignored:
// readiness is one-way.
func (r *Registry) SetReady(ready bool) {
	if !ready {
		r.logger.Debug("ignoring readiness downgrade", "ready", r.ready.Load())
		return
	}
	if r.ready.CompareAndSwap(false, true) {
		r.logger.Info("system ready")
	}
}

// Ready reports whether SetReady(true) has been called.
func (r *Registry) Ready() bool {
	return r.ready.Load()
}

// State returns the readiness state.
func (r *Registry) State() Readiness {
	if r.ready.Load() {
		return Ready
	}
	return NotReady
}

// Bind overwrites the uid stored in b. Pass Unbound when the app is not
// currently resolved. Unknown bindings are ignored.
func (r *Registry) Bind(b Binding, uid int) {
	r.mu.Lock()
	slot := r.slot(b)
	if slot == nil {
		r.mu.Unlock()
		r.logger.Warn("bind on unknown binding", "binding", b.String())
		return
	}
	prev := *slot
	*slot = uid
	r.mu.Unlock()

	if prev != uid {
		r.logger.Debug("binding changed", "binding", b.String(), "old_uid", prev, "uid", uid)
	}
}

// UIDOf returns the uid stored in b, or Unbound for unknown bindings.
func (r *Registry) UIDOf(b Binding) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot := r.slot(b); slot != nil {
		return *slot
	}
	return Unbound
}

// slot returns the field backing b. Caller must hold mu.
func (r *Registry) slot(b Binding) *int {
	switch b {
	case PrivilegedApp:
		return &r.privilegedUID
	case AudioEnhancementApp:
		return &r.audioUID
	default:
		return nil
	}
}

// SetPrivilegedAppUID binds the privileged app.
func (r *Registry) SetPrivilegedAppUID(uid int) {
	r.Bind(PrivilegedApp, uid)
}

// SetAudioEnhancementAppUID binds the audio-enhancement app.
func (r *Registry) SetAudioEnhancementAppUID(uid int) {
	r.Bind(AudioEnhancementApp, uid)
}

// IsPrivilegedAppUID reports whether uid is the bound privileged app uid.
func (r *Registry) IsPrivilegedAppUID(uid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.privilegedUID == uid
}

// IsPrivilegedAppID reports whether appID is the app ID of the bound
// privileged app.
func (r *Registry) IsPrivilegedAppID(appID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return AppID(r.privilegedUID) == appID
}

// PrivilegedAppID returns the app ID of the bound privileged app.
func (r *Registry) PrivilegedAppID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return AppID(r.privilegedUID)
}

// PrivilegedAppUID returns the bound privileged app uid.
func (r *Registry) PrivilegedAppUID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.privilegedUID
}

// IsAudioEnhancementUID reports whether uid is the bound audio-enhancement
// app uid.
func (r *Registry) IsAudioEnhancementUID(uid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audioUID == uid
}

// HidePrivilegedAppFromIdleQueries reports whether idle state should be
// hidden from the privileged app.
func (r *Registry) HidePrivilegedAppFromIdleQueries() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collab.Settings == nil {
		return false
	}
	return r.collab.Settings.HideIdleFromPrivilegedApp()
}

// UnrestrictedNetworkWhileIdle reports whether network access stays
// unrestricted while the device is idle.
func (r *Registry) UnrestrictedNetworkWhileIdle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collab.Settings == nil {
		return false
	}
	return r.collab.Settings.UnrestrictedNetworkWhileIdle()
}

// IsEnergySaveMode reports whether aggressive or extreme idle is requested.
func (r *Registry) IsEnergySaveMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return energySave(r.collab.Settings)
}

func energySave(s Settings) bool {
	if s == nil {
		return false
	}
	return s.AggressiveIdleEnabled() || s.ExtremeIdleEnabled()
}

// Snapshot is a consistent view of the registry. Every field was read in the
// same critical section.
type Snapshot struct {
	Ready bool `json:"ready"`

	PrivilegedUID   int `json:"privileged_uid"`
	PrivilegedAppID int `json:"privileged_app_id"`
	AudioUID        int `json:"audio_enhancement_uid"`
	AudioAppID      int `json:"audio_enhancement_app_id"`

	HideIdleFromPrivilegedApp    bool `json:"hide_idle_from_privileged_app"`
	UnrestrictedNetworkWhileIdle bool `json:"unrestricted_network_while_idle"`
	AggressiveIdle               bool `json:"aggressive_idle"`
	ExtremeIdle                  bool `json:"extreme_idle"`
	EnergySaveMode               bool `json:"energy_save_mode"`
}

// Snapshot returns every field of the registry read under one lock
// acquisition.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Ready:           r.ready.Load(),
		PrivilegedUID:   r.privilegedUID,
		PrivilegedAppID: AppID(r.privilegedUID),
		AudioUID:        r.audioUID,
		AudioAppID:      AppID(r.audioUID),
	}
	if st := r.collab.Settings; st != nil {
		s.HideIdleFromPrivilegedApp = st.HideIdleFromPrivilegedApp()
		s.UnrestrictedNetworkWhileIdle = st.UnrestrictedNetworkWhileIdle()
		s.AggressiveIdle = st.AggressiveIdleEnabled()
		s.ExtremeIdle = st.ExtremeIdleEnabled()
		s.EnergySaveMode = s.AggressiveIdle || s.ExtremeIdle
	}
	return s
}
