// Package resultset implements the per-connection accumulator that turns a
// sequence of backend wire packets into one logical QueryResult.
// A QueryResult is owned by exactly one backend connection's read path and
// is not safe for concurrent use.
package resultset

import "fmt"

// Phase is the accumulator's state.
type Phase int

const (
	// AwaitFirst is the initial phase: the next packet is OK | ERR | a
	// column-count header.
	AwaitFirst Phase = iota
	// Columns is entered on a column-count header; exactly ColumnCount
	// column definitions are expected before a terminal EOF.
	Columns
	// Rows is entered once the columns EOF arrives; arbitrary row packets
	// precede a terminal EOF.
	Rows
	// Done is terminal: the result is complete.
	Done
)

func (p Phase) String() string {
	switch p {
	case AwaitFirst:
		return "AWAIT_FIRST"
	case Columns:
		return "COLUMNS"
	case Rows:
		return "ROWS"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// StateError reports an operation attempted in a phase that forbids it.
type StateError struct {
	Op    string
	Phase Phase
}

func (e *StateError) Error() string {
	return fmt.Sprintf("resultset: %s not valid in phase %s", e.Op, e.Phase)
}

// GenericResponse is the semantic payload of an OK or ERR packet.
type GenericResponse struct {
	IsError      bool
	AffectedRows uint64
	LastInsertID uint64
	Status       uint16
	ErrorCode    uint16
	SQLState     string
	Message      string
}

// ColumnDefinition is one column-definition packet's decoded fields
// (only the fields this module's callers need; a full wire decoder lives in
// package wire / backendconn).
type ColumnDefinition struct {
	Schema       string
	Name         string
	Table        string
	Type         byte
	CharacterSet uint16
	Flags        uint16
	Decimals     byte
}

// Row is one text-protocol result row: one length-encoded cell per column,
// with a nil entry meaning SQL NULL.
type Row [][]byte

// QueryResult is the mutable accumulator described in the design. Exactly one
// of Generic or (Columns, Rows) is populated once Phase reaches Done.
type QueryResult struct {
	Generic *GenericResponse

	ColumnCount int
	ColumnDefs  []ColumnDefinition
	Rows        []Row

	phase Phase
}

// New returns an accumulator in AwaitFirst.
func New() *QueryResult {
	return &QueryResult{phase: AwaitFirst}
}

// Phase returns the current state.
func (q *QueryResult) Phase() Phase { return q.phase }

// FeedGeneric records an OK or ERR packet's semantics and completes the
// result immediately, moving straight to Done.
func (q *QueryResult) FeedGeneric(resp GenericResponse) error {
	if q.phase != AwaitFirst {
		return &StateError{Op: "feed_generic", Phase: q.phase}
	}
	q.Generic = &resp
	q.phase = Done
	return nil
}

// FeedColumnCount records a column-count header and allocates the column
// vector. n must be > 0.
func (q *QueryResult) FeedColumnCount(n int) error {
	if q.phase != AwaitFirst {
		return &StateError{Op: "feed_column_count", Phase: q.phase}
	}
	if n <= 0 {
		return fmt.Errorf("resultset: column count must be > 0, got %d", n)
	}
	q.ColumnCount = n
	q.ColumnDefs = make([]ColumnDefinition, 0, n)
	q.phase = Columns
	return nil
}

// FeedColumnDefinition appends one column definition. It fails once the
// column vector is already full — the terminal columns-EOF must come next.
func (q *QueryResult) FeedColumnDefinition(def ColumnDefinition) error {
	if q.phase != Columns {
		return &StateError{Op: "feed_column_definition", Phase: q.phase}
	}
	if len(q.ColumnDefs) >= q.ColumnCount {
		return fmt.Errorf("resultset: column definitions already complete (%d/%d)", len(q.ColumnDefs), q.ColumnCount)
	}
	q.ColumnDefs = append(q.ColumnDefs, def)
	return nil
}

// NeedColumnDefinition reports whether the accumulator is still waiting on
// column-definition packets: phase is Columns and fewer definitions have
// arrived than the declared column count.
func (q *QueryResult) NeedColumnDefinition() bool {
	return q.phase == Columns && len(q.ColumnDefs) < q.ColumnCount
}

// ColumnsFinished reports whether every declared column definition has
// arrived — the precondition for FeedColumnsEOF.
func (q *QueryResult) ColumnsFinished() bool {
	return q.phase == Columns && len(q.ColumnDefs) == q.ColumnCount
}

// FeedColumnsEOF transitions Columns -> Rows. Requires ColumnsFinished().
func (q *QueryResult) FeedColumnsEOF() error {
	if !q.ColumnsFinished() {
		return &StateError{Op: "feed_columns_eof", Phase: q.phase}
	}
	q.phase = Rows
	return nil
}

// FeedRow appends one text-protocol row. Fails outside Rows.
func (q *QueryResult) FeedRow(row Row) error {
	if q.phase != Rows {
		return &StateError{Op: "feed_row", Phase: q.phase}
	}
	q.Rows = append(q.Rows, row)
	return nil
}

// FeedRowsEOF transitions Rows -> Done.
func (q *QueryResult) FeedRowsEOF() error {
	if q.phase != Rows {
		return &StateError{Op: "feed_rows_eof", Phase: q.phase}
	}
	q.phase = Done
	return nil
}
