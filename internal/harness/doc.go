// Package harness runs YAML policy scenarios against a real registry,
// resolver and settings store.
//
// # Scenario Format
//
//	name: privileged_across_users
//	description: "What this scenario validates"
//	bindings:                 # optional, defaults to the config defaults
//	  privileged: com.google.android.gms
//	packages:                 # optional initial name→uid table
//	  com.google.android.gms: 10123
//	settings:                 # optional seeded defaults
//	  aggressive_idle: true
//	steps:
//	  - event: { kind: package_added, package: com.google.android.gms, uid: 10123 }
//	    outcome: bound
//	  - setting: { key: extreme_idle, value: true }
//	  - expect:
//	      state: { privileged_uid: 10123, energy_save_mode: true }
//	      privileged_uids: [10123]
//	      not_privileged_uids: [1010123]
//	      privileged_app_ids: [10123]
//
// # Determinism
//
// Every run uses a fresh in-memory SQLite store, a testutil.FixedIDGenerator
// and a testutil.DeterministicClock, so the trace of a scenario is
// byte-identical across runs and can be compared against a golden file.
package harness
