// Package executor implements the execution fan-out engine: one logical
// request multiplexed into N physical executions against backend
// connections, with ordered result collection and per-connection mutual
// exclusion.
package executor

import "context"

// SqlType selects which event variant a unit's execution publishes.
type SqlType int

const (
	DQL SqlType = iota
	DML
	DDL
	DCL
	TCL
)

func (t SqlType) String() string {
	switch t {
	case DQL:
		return "DQL"
	case DML:
		return "DML"
	case DDL:
		return "DDL"
	case DCL:
		return "DCL"
	case TCL:
		return "TCL"
	default:
		return "UNKNOWN"
	}
}

// StatementUnit is an immutable descriptor of one physical execution: the
// target data source identity, an opaque connection handle (typically a
// *backendconn.Conn, but any comparable value a callback recognizes works),
// and the parameter sets to bind. Conn doubles as the mutual-exclusion key:
// two units carrying the same Conn value never run their callbacks
// concurrently, since a physical connection is a non-reentrant shared
// resource.
type StatementUnit struct {
	DataSourceID  string
	Conn          any
	ParameterSets [][]any
}

// ExecuteCallback is the only component that touches the underlying
// database API; it is invoked once per StatementUnit.
type ExecuteCallback[T any] func(ctx context.Context, unit StatementUnit) (T, error)
