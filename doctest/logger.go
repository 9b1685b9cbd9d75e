package doctest

// Logger is an optional interface for observability during a run.
// Implementations receive parse failures, per-snippet outcomes and timing.
//
// Contract:
// - Errors: logging must be best-effort; Logf should not panic.
// - Ownership: format/args are read-only.
type Logger interface {
	// Logf logs a formatted message.
	Logf(format string, args ...any)
}
