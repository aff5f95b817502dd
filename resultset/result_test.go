package resultset

import "testing"

// Scenario (a): an OK response completes the result with phase Done.
func TestFeedGenericOK(t *testing.T) {
	q := New()
	if err := q.FeedGeneric(GenericResponse{AffectedRows: 1}); err != nil {
		t.Fatalf("FeedGeneric: %v", err)
	}
	if q.Phase() != Done {
		t.Errorf("phase = %v, want Done", q.Phase())
	}
	if q.Generic == nil || q.Generic.AffectedRows != 1 {
		t.Errorf("Generic = %+v", q.Generic)
	}
}

func TestFeedGenericErr(t *testing.T) {
	q := New()
	if err := q.FeedGeneric(GenericResponse{IsError: true, ErrorCode: 1105, Message: "boom"}); err != nil {
		t.Fatalf("FeedGeneric: %v", err)
	}
	if q.Phase() != Done || !q.Generic.IsError {
		t.Errorf("expected Done/IsError, got phase=%v generic=%+v", q.Phase(), q.Generic)
	}
}

// Scenario (b): a 2-column, 3-row result set assembles into one QueryResult.
func TestAssembleResultSet(t *testing.T) {
	q := New()
	if err := q.FeedColumnCount(2); err != nil {
		t.Fatalf("FeedColumnCount: %v", err)
	}
	if q.Phase() != Columns {
		t.Fatalf("phase = %v, want Columns", q.Phase())
	}

	if !q.NeedColumnDefinition() {
		t.Fatal("expected NeedColumnDefinition after column count, before any defs")
	}
	if err := q.FeedColumnDefinition(ColumnDefinition{Name: "c1"}); err != nil {
		t.Fatalf("FeedColumnDefinition 1: %v", err)
	}
	if !q.NeedColumnDefinition() {
		t.Fatal("expected NeedColumnDefinition after 1/2 defs")
	}
	if err := q.FeedColumnDefinition(ColumnDefinition{Name: "c2"}); err != nil {
		t.Fatalf("FeedColumnDefinition 2: %v", err)
	}
	if q.NeedColumnDefinition() {
		t.Fatal("expected NeedColumnDefinition false once 2/2 defs received")
	}
	if !q.ColumnsFinished() {
		t.Fatal("ColumnsFinished should be true")
	}

	if err := q.FeedColumnsEOF(); err != nil {
		t.Fatalf("FeedColumnsEOF: %v", err)
	}
	if q.Phase() != Rows {
		t.Fatalf("phase = %v, want Rows", q.Phase())
	}

	rows := [][]string{{"a", "1"}, {"b", "2"}, {"c", "3"}}
	for _, r := range rows {
		row := Row{[]byte(r[0]), []byte(r[1])}
		if err := q.FeedRow(row); err != nil {
			t.Fatalf("FeedRow(%v): %v", r, err)
		}
	}
	if err := q.FeedRowsEOF(); err != nil {
		t.Fatalf("FeedRowsEOF: %v", err)
	}

	if q.Phase() != Done {
		t.Fatalf("phase = %v, want Done", q.Phase())
	}
	if len(q.ColumnDefs) != 2 || q.ColumnDefs[0].Name != "c1" || q.ColumnDefs[1].Name != "c2" {
		t.Errorf("ColumnDefs = %+v", q.ColumnDefs)
	}
	if len(q.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(q.Rows))
	}
	for i, want := range rows {
		if string(q.Rows[i][0]) != want[0] || string(q.Rows[i][1]) != want[1] {
			t.Errorf("row %d = %v, want %v", i, q.Rows[i], want)
		}
	}
}

// Invariant 4: NeedColumnDefinition() <=> phase=Columns AND received<declared.
func TestNeedColumnDefinitionInvariant(t *testing.T) {
	q := New()
	if q.NeedColumnDefinition() {
		t.Error("AwaitFirst phase must not need column definitions")
	}
	q.FeedColumnCount(1)
	if !q.NeedColumnDefinition() {
		t.Error("should need a column definition with 0/1 received")
	}
	q.FeedColumnDefinition(ColumnDefinition{Name: "only"})
	if q.NeedColumnDefinition() {
		t.Error("should not need a column definition with 1/1 received")
	}
	q.FeedColumnsEOF()
	if q.NeedColumnDefinition() {
		t.Error("Rows phase must not need column definitions")
	}
}

func TestFeedColumnDefinitionRejectsOverfill(t *testing.T) {
	q := New()
	q.FeedColumnCount(1)
	q.FeedColumnDefinition(ColumnDefinition{Name: "c1"})
	if err := q.FeedColumnDefinition(ColumnDefinition{Name: "c2"}); err == nil {
		t.Error("expected error feeding a column definition past the declared count")
	}
}

func TestFeedColumnsEOFRequiresColumnsFinished(t *testing.T) {
	q := New()
	q.FeedColumnCount(2)
	q.FeedColumnDefinition(ColumnDefinition{Name: "c1"})
	if err := q.FeedColumnsEOF(); err == nil {
		t.Error("expected error completing columns before all definitions arrived")
	}
}

func TestFeedRowRejectedOutsideRowsPhase(t *testing.T) {
	q := New()
	if err := q.FeedRow(Row{[]byte("x")}); err == nil {
		t.Error("expected error feeding a row in AwaitFirst phase")
	}
}

func TestFeedGenericRejectedAfterColumnsStarted(t *testing.T) {
	q := New()
	q.FeedColumnCount(1)
	if err := q.FeedGeneric(GenericResponse{}); err == nil {
		t.Error("expected error feeding a generic response mid column phase")
	}
}
