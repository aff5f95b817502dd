package executor

// Context is the explicit carry-over value threaded into every worker task:
// it replaces goroutine-local state (which Go does not have) for the
// exception-thrown flag and user data map. It is snapshotted once at
// Execute's call time and passed to every unit's executeInternal, which
// acts on ThrowOnError; the callback itself receives only ctx and the
// unit, so UserData is not handed to it.
type Context struct {
	// ThrowOnError controls failure propagation: when true, a callback
	// error is raised to the caller of Execute; when false, it is
	// published via the event sink and the affected result index is left
	// at T's zero value.
	ThrowOnError bool
	UserData     map[string]any
}

// DefaultContext returns a Context with ThrowOnError true.
func DefaultContext() Context {
	return Context{ThrowOnError: true, UserData: make(map[string]any)}
}
