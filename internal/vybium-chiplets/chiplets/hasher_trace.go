package chiplets

import "github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"

// HasherTrace is the column-major, append-only execution trace of the hash
// chiplet: TraceWidth columns (3 selectors, 1 row address, Width state
// columns, 1 node-index column), grown in 8-row permutation cycles.
//
// Row address is a 1-indexed running counter: the first row ever appended
// gets address 1. This follows the original processor's row numbering,
// where address 0 is reserved and unused (see SPEC_FULL.md §2.3).
type HasherTrace struct {
	field *core.Field
	sel0  []*core.FieldElement
	sel1  []*core.FieldElement
	sel2  []*core.FieldElement
	addr  []uint32
	state [Width][]*core.FieldElement
	index []*core.FieldElement

	middleSelectors Selectors
}

// NewHasherTrace creates an empty trace over field.
func NewHasherTrace(field *core.Field) *HasherTrace {
	return &HasherTrace{
		field:           field,
		middleSelectors: selectorsFromBits(field, 0, 0, 0),
	}
}

// TraceLen returns the number of rows appended so far.
func (t *HasherTrace) TraceLen() int {
	return len(t.addr)
}

// NextRowAddr returns the 1-indexed address the next permutation's first
// row will occupy.
func (t *HasherTrace) NextRowAddr() uint32 {
	return uint32(t.TraceLen()) + 1
}

// LastAddr returns the address of the most recently appended row (0 if the
// trace is empty).
func (t *HasherTrace) LastAddr() uint32 {
	if t.TraceLen() == 0 {
		return 0
	}
	return t.addr[t.TraceLen()-1]
}

func (t *HasherTrace) appendRow(sel Selectors, state HasherState, nodeIndex *core.FieldElement) {
	t.sel0 = append(t.sel0, sel.S0)
	t.sel1 = append(t.sel1, sel.S1)
	t.sel2 = append(t.sel2, sel.S2)
	t.addr = append(t.addr, t.NextRowAddr())
	for i := 0; i < Width; i++ {
		t.state[i] = append(t.state[i], state[i])
	}
	t.index = append(t.index, nodeIndex)
}

// AppendPermutation appends 8 rows for one full sponge permutation: row 0
// carries initSelectors, rows 1..6 carry the fixed "no label" middle
// pattern, row 7 carries finalSelectors. state is mutated in place to the
// post-permutation value.
func (t *HasherTrace) AppendPermutation(sponge *Sponge, state *HasherState, initSelectors, finalSelectors Selectors) {
	t.AppendPermutationWithIndex(sponge, state, initSelectors, finalSelectors, t.field.Zero(), t.field.Zero())
}

// AppendPermutationWithIndex is AppendPermutation plus population of the
// node-index column: row 0 gets initIndex, rows 1..7 get restIndex.
func (t *HasherTrace) AppendPermutationWithIndex(sponge *Sponge, state *HasherState, initSelectors, finalSelectors Selectors, initIndex, restIndex *core.FieldElement) {
	rows := sponge.PermuteSteps(*state)
	for i, rowState := range rows {
		sel := t.middleSelectors
		switch i {
		case 0:
			sel = initSelectors
		case PermutationRounds:
			sel = finalSelectors
		}
		idx := restIndex
		if i == 0 {
			idx = initIndex
		}
		t.appendRow(sel, rowState, idx)
	}
	*state = rows[PermutationRounds]
}
