package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/roach88/devpolicy/internal/policy"
)

// checkExpect evaluates e against the registry and returns one message per
// failed check, in a stable order.
func checkExpect(reg *policy.Registry, e Expect) []string {
	var failures []string

	if len(e.State) > 0 {
		failures = append(failures, checkState(reg.Snapshot(), e.State)...)
	}

	checkUIDs := func(label string, values []int, want bool, fn func(int) bool) {
		for _, v := range values {
			if got := fn(v); got != want {
				failures = append(failures, fmt.Sprintf("%s(%d) = %t, expected %t", label, v, got, want))
			}
		}
	}
	checkUIDs("IsPrivilegedAppUID", e.PrivilegedUIDs, true, reg.IsPrivilegedAppUID)
	checkUIDs("IsPrivilegedAppUID", e.NotPrivilegedUIDs, false, reg.IsPrivilegedAppUID)
	checkUIDs("IsPrivilegedAppID", e.PrivilegedAppIDs, true, reg.IsPrivilegedAppID)
	checkUIDs("IsPrivilegedAppID", e.NotPrivilegedAppIDs, false, reg.IsPrivilegedAppID)
	checkUIDs("IsAudioEnhancementUID", e.AudioEnhancementUIDs, true, reg.IsAudioEnhancementUID)
	checkUIDs("IsAudioEnhancementUID", e.NotAudioEnhancementUIDs, false, reg.IsAudioEnhancementUID)

	return failures
}

// checkState compares want against snap by JSON field name (subset match).
// Values are compared by their JSON encoding, so YAML ints match JSON numbers.
func checkState(snap policy.Snapshot, want map[string]any) []string {
	raw, err := json.Marshal(snap)
	if err != nil {
		return []string{fmt.Sprintf("marshal snapshot: %v", err)}
	}
	var actual map[string]json.RawMessage
	if err := json.Unmarshal(raw, &actual); err != nil {
		return []string{fmt.Sprintf("unmarshal snapshot: %v", err)}
	}

	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var failures []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			failures = append(failures, fmt.Sprintf("state.%s: unknown field", k))
			continue
		}
		expected, err := json.Marshal(want[k])
		if err != nil {
			failures = append(failures, fmt.Sprintf("state.%s: %v", k, err))
			continue
		}
		if !bytes.Equal(expected, got) {
			failures = append(failures, fmt.Sprintf("state.%s = %s, expected %s", k, got, expected))
		}
	}
	return failures
}
