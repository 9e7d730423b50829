package resolver

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind is the type of a package-resolution event.
type Kind string

const (
	KindPackageAdded   Kind = "package_added"
	KindPackageUpdated Kind = "package_updated"
	KindPackageRemoved Kind = "package_removed"
	KindBootCompleted  Kind = "boot_completed"
)

// Event is one report from the host's package manager or boot sequence.
type Event struct {
	ID      string `json:"id" yaml:"id,omitempty"`
	Seq     int64  `json:"seq" yaml:"seq,omitempty"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	UID     int    `json:"uid" yaml:"uid,omitempty"`
}

// Outcome describes what applying an event did.
type Outcome string

const (
	OutcomeBound   Outcome = "bound"
	OutcomeUnbound Outcome = "unbound"
	OutcomeReady   Outcome = "ready"
	OutcomeIgnored Outcome = "ignored"
	OutcomeInvalid Outcome = "invalid"
)

// NormalizePackage returns the canonical form of a package name: NFC
// normalized with surrounding whitespace removed. Names that differ only in
// Unicode composition match the same binding.
func NormalizePackage(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// validate checks the fields each kind requires.
func (ev Event) validate() error {
	switch ev.Kind {
	case KindPackageAdded, KindPackageUpdated:
		if NormalizePackage(ev.Package) == "" {
			return newInvalidEvent(ev, "package name is required")
		}
		// uid 0 is root, never a package; treat it as missing.
		if ev.UID == 0 {
			return newInvalidEvent(ev, "uid is required")
		}
		if ev.UID < 0 {
			return newInvalidEvent(ev, "uid must be non-negative")
		}
	case KindPackageRemoved:
		if NormalizePackage(ev.Package) == "" {
			return newInvalidEvent(ev, "package name is required")
		}
	case KindBootCompleted:
	default:
		return &EventError{
			Code:    ErrCodeUnknownKind,
			Message: "unknown event kind " + string(ev.Kind),
			EventID: ev.ID,
			Seq:     ev.Seq,
		}
	}
	return nil
}
