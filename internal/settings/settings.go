// Package settings defines the device-policy setting keys and a lock-free
// in-memory implementation of policy.Settings.
//
// Memory is what the registry actually reads. Durable backends (see
// internal/store) keep a Memory as their cache and update it after each
// committed write, so registry reads never block on I/O.
package settings

import (
	"sort"
	"sync/atomic"
)

// Key names one policy setting.
type Key string

const (
	HideIdleFromPrivilegedApp    Key = "hide_idle_from_privileged_app"
	UnrestrictedNetworkWhileIdle Key = "unrestricted_network_while_idle"
	AggressiveIdle               Key = "aggressive_idle"
	ExtremeIdle                  Key = "extreme_idle"
)

var allKeys = []Key{
	HideIdleFromPrivilegedApp,
	UnrestrictedNetworkWhileIdle,
	AggressiveIdle,
	ExtremeIdle,
}

// Keys returns every known key in a stable order.
func Keys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// ParseKey returns the Key for s, if s names a known setting.
func ParseKey(s string) (Key, bool) {
	for _, k := range allKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Values maps keys to their boolean values.
type Values map[Key]bool

// SortedKeys returns the keys present in v, sorted.
func (v Values) SortedKeys() []Key {
	keys := make([]Key, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Memory is an in-memory policy.Settings.
//
// Thread-safety: every method is lock-free, so Memory is safe to read while
// the registry lock is held.
type Memory struct {
	hide         atomic.Bool
	unrestricted atomic.Bool
	aggressive   atomic.Bool
	extreme      atomic.Bool
}

// NewMemory creates a Memory with all flags false, then applies initial.
func NewMemory(initial Values) *Memory {
	m := &Memory{}
	for k, v := range initial {
		m.Set(k, v)
	}
	return m
}

func (m *Memory) flag(k Key) *atomic.Bool {
	switch k {
	case HideIdleFromPrivilegedApp:
		return &m.hide
	case UnrestrictedNetworkWhileIdle:
		return &m.unrestricted
	case AggressiveIdle:
		return &m.aggressive
	case ExtremeIdle:
		return &m.extreme
	default:
		return nil
	}
}

// Set stores v under k. It reports false for unknown keys.
func (m *Memory) Set(k Key, v bool) bool {
	f := m.flag(k)
	if f == nil {
		return false
	}
	f.Store(v)
	return true
}

// Get returns the value stored under k and whether k is known.
func (m *Memory) Get(k Key) (bool, bool) {
	f := m.flag(k)
	if f == nil {
		return false, false
	}
	return f.Load(), true
}

// Values returns a copy of every flag.
func (m *Memory) Values() Values {
	out := make(Values, len(allKeys))
	for _, k := range allKeys {
		out[k] = m.flag(k).Load()
	}
	return out
}

func (m *Memory) HideIdleFromPrivilegedApp() bool    { return m.hide.Load() }
func (m *Memory) UnrestrictedNetworkWhileIdle() bool { return m.unrestricted.Load() }
func (m *Memory) AggressiveIdleEnabled() bool        { return m.aggressive.Load() }
func (m *Memory) ExtremeIdleEnabled() bool           { return m.extreme.Load() }
