// Package sim runs multi-agent conversation simulations. The Registry is the
// public entry point: it validates configurations, enforces the concurrency
// ceiling, launches one Runner goroutine per run and hosts the idle monitor
// that stops unattended runs. The Runner owns all mutable run state and
// drives the round-robin turn loop, streaming token events through the run's
// bus and persisting the final transcript to an export sink on every
// terminal path.
package sim
