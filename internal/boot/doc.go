// Package boot gates the application on backend readiness.
//
// A Monitor walks Connecting → LoadingIndex → WarmingAI → Ready. Connecting
// probes GET /health with an unbounded fixed-interval retry, so an absent
// backend keeps the boot screen up indefinitely instead of failing. The two
// later stages are paced by fixed delays; WarmingAI fires the warmup hint as
// a detached task whose result is never observed. Error is reserved for a
// panic in the driver itself.
//
// WaitForBackend is the bounded counterpart for guards and the CLI. It uses
// the same retry primitive with an attempt budget and returns
// ErrBackendTimeout once the budget is spent.
package boot
