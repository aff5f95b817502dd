package executor

import (
	"errors"
	"strconv"
)

// ErrClosed is reported when a unit is submitted to an engine that has
// already been closed — "pool rejected" in the ExecutionError taxonomy.
// Execute wraps it in an *ExecutionError for each unit it could not
// dispatch to the pool.
var ErrClosed = errors.New("executor: engine is closed")

// ExecutionError reports a failure inside the fan-out engine unrelated to
// the database itself : a pool rejection or an interrupted wait.
type ExecutionError struct {
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return "executor: " + e.Op + ": " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// SqlError reports a callback failure attributable to the database itself:
// an ERR packet during a command, or a callback returning its own error.
// It is per-request and does not invalidate the connection. It is a
// distinct type from backendconn.SqlError: that one decodes an ERR packet
// off the wire, this one is whatever a caller's ExecuteCallback returns.
type SqlError struct {
	Code    uint16
	Message string
}

func (e *SqlError) Error() string {
	return "executor: sql error " + strconv.Itoa(int(e.Code)) + ": " + e.Message
}
