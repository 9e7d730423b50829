package harness

import "github.com/roach88/devpolicy/internal/policy"

// Trace entry types.
const (
	TraceEvent   = "event"
	TraceSetting = "setting"
)

// TraceEntry records one mutating step and the registry state after it.
type TraceEntry struct {
	Step int    `json:"step"`
	Type string `json:"type"`

	// Seq is the resolver seq for events and the store seq for settings.
	Seq int64 `json:"seq"`

	ID      string `json:"id,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Package string `json:"package,omitempty"`
	UID     *int   `json:"uid,omitempty"`

	Key   string `json:"key,omitempty"`
	Value *bool  `json:"value,omitempty"`

	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`

	State policy.Snapshot `json:"state"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Initial is the registry state after initial binding resolution.
	Initial policy.Snapshot `json:"initial"`

	Trace []TraceEntry `json:"trace"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
