// Package policy implements the device-policy state registry.
//
// The registry is a small, long-lived holder of cross-cutting state that
// many unrelated subsystems consult: power management, network policy,
// idle/standby logic and vendor quirks. It stores decisions and identities;
// it does not compute policy.
//
// # State
//
//   - Readiness: one-way NotReady → Ready flag, set once boot completes.
//   - Bindings: the privileged app uid and the audio-enhancement app uid.
//     -1 means unbound. App IDs are always derived from the stored uid.
//   - Policy flags: not stored. Each read delegates to the Settings
//     collaborator bound at Initialize.
//
// # Concurrency
//
// A single mutex guards every mutable field except readiness, which is an
// atomic because it is monotonic and read-mostly. Getters that derive an app
// ID from a uid read and derive inside one critical section, so a uid and its
// app ID never disagree. Snapshot extends the same guarantee to every field:
// values returned together were read together.
//
// Every operation is total. Queries before Initialize return the zero
// defaults (-1 uids, not ready, all flags false) and never fail, because
// dozens of callers may query the registry during early boot.
//
// # Lifecycle
//
//	reg := policy.New()
//	reg.Initialize(policy.Collaborators{Settings: st.Settings()})
//	reg.SetPrivilegedAppUID(10123)
//	reg.SetReady(true)
//
// Initialize must run on the startup goroutine before concurrent traffic
// begins; the registry does not detect concurrent initializers.
package policy
