package chiplets

import (
	"testing"

	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"
)

func testBeta(t *testing.T, field *core.Field) []*core.FieldElement {
	t.Helper()
	beta := make([]*core.FieldElement, 6)
	for i := range beta {
		beta[i] = field.NewElementFromInt64(int64(i + 3))
	}
	return beta
}

func TestSiblingTableEmptyIsBalanced(t *testing.T) {
	field := testField(t)
	st, err := NewSiblingTable(field, testBeta(t, field))
	if err != nil {
		t.Fatalf("NewSiblingTable: %v", err)
	}
	if !st.Balanced() {
		t.Errorf("fresh sibling table not balanced")
	}
}

func TestSiblingTableRejectsShortBeta(t *testing.T) {
	field := testField(t)
	short := []*core.FieldElement{field.One(), field.One()}
	if _, err := NewSiblingTable(field, short); err == nil {
		t.Errorf("NewSiblingTable with short beta succeeded, want error")
	}
}

func TestSiblingTableMatchedAddRemoveBalances(t *testing.T) {
	field := testField(t)
	st, err := NewSiblingTable(field, testBeta(t, field))
	if err != nil {
		t.Fatalf("NewSiblingTable: %v", err)
	}

	idx0 := field.NewElementFromInt64(0)
	idx1 := field.NewElementFromInt64(1)
	w0 := sampleWord(field, 1)
	w1 := sampleWord(field, 5)

	st.Add(1, idx0, w0)
	st.Add(9, idx1, w1)
	if st.Balanced() {
		t.Fatalf("table reports balanced with outstanding entries")
	}

	if err := st.Remove(17, idx0, w0); err != nil {
		t.Fatalf("Remove(idx0): %v", err)
	}
	if err := st.Remove(25, idx1, w1); err != nil {
		t.Fatalf("Remove(idx1): %v", err)
	}
	if !st.Balanced() {
		t.Errorf("table not balanced after matching FIFO add/remove")
	}
}

func TestSiblingTableMismatchedValueStaysImbalanced(t *testing.T) {
	field := testField(t)
	st, err := NewSiblingTable(field, testBeta(t, field))
	if err != nil {
		t.Fatalf("NewSiblingTable: %v", err)
	}

	idx := field.NewElementFromInt64(0)
	st.Add(1, idx, sampleWord(field, 1))
	if err := st.Remove(9, idx, sampleWord(field, 999)); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if st.Balanced() {
		t.Errorf("table balanced despite mismatched sibling value")
	}
}

func TestSiblingTableRemoveOnEmptyErrors(t *testing.T) {
	field := testField(t)
	st, err := NewSiblingTable(field, testBeta(t, field))
	if err != nil {
		t.Fatalf("NewSiblingTable: %v", err)
	}
	if err := st.Remove(1, field.Zero(), sampleWord(field, 1)); err == nil {
		t.Errorf("Remove on empty table succeeded, want ErrQueueUnderflow")
	}
}
