// Package chiplets implements the chiplets bus permutation argument and the
// hash chiplet's protocol engine for a STARK-based processor: the
// coordination layer that lets a main execution trace offload hashing
// (and, through opaque lookup rows, bitwise/memory) work to specialized
// sub-tables and later prove the offload was honest via a grand-product
// argument.
package chiplets

import "github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"

// Width, Capacity and Rate parameterize the hasher's sponge state. Capacity
// is the first Capacity elements of the state; Rate is the remaining
// elements. The digest of a permutation is the first DigestLen elements of
// the rate.
const (
	Width     = 12
	Capacity  = 4
	Rate      = 8
	DigestLen = 4

	// TraceWidth is the hasher trace's column count: 3 selectors, 1 row
	// address, Width state columns, 1 node-index column.
	TraceWidth = 3 + 1 + Width + 1

	// PermutationRounds is the number of row-to-row transitions within one
	// 8-row permutation cycle (row 0 is the pre-permutation state, rows
	// 1..7 are produced by one round transition each).
	PermutationRounds = 7
)

// Protocol labels. Values are arbitrary but distinct and small enough that
// label+32 (the largest transition-label shift, see Reduce) stays well
// within a single byte.
const (
	LinearHashLabel  uint8 = 1
	MPVerifyLabel    uint8 = 2
	MRUpdateOldLabel uint8 = 3
	MRUpdateNewLabel uint8 = 4
	ReturnHashLabel  uint8 = 5
	ReturnStateLabel uint8 = 6

	// BitwiseLabel and MemoryLabel identify the opaque chiplet rows the bus
	// also carries; their internal layout is owned by the bitwise/memory
	// chiplets, which are external collaborators of this core.
	BitwiseLabel uint8 = 7
	MemoryLabel  uint8 = 8

	firstCycleShift uint8 = 16
	lastCycleShift  uint8 = 32
)

// HasherState is the 12-element sponge state: capacity (first Capacity
// elements) followed by rate (remaining Rate elements).
type HasherState [Width]*core.FieldElement

// Rate returns the rate portion of the state.
func (s HasherState) Rate() []*core.FieldElement {
	return s[Capacity:]
}

// Digest returns the first DigestLen elements of the rate.
func (s HasherState) Digest() [DigestLen]*core.FieldElement {
	var d [DigestLen]*core.FieldElement
	copy(d[:], s[Capacity:Capacity+DigestLen])
	return d
}

// Selectors is the (s0, s1, s2) triple that both labels a trace row for the
// bus (via LabelFor) and serves as an AIR constraint hint. Each component is
// a 0/1 field element.
type Selectors struct {
	S0, S1, S2 *core.FieldElement
}

func selectorsFromBits(field *core.Field, b0, b1, b2 int) Selectors {
	return Selectors{
		S0: field.NewElementFromInt64(int64(b0)),
		S1: field.NewElementFromInt64(int64(b1)),
		S2: field.NewElementFromInt64(int64(b2)),
	}
}

func bit(fe *core.FieldElement) int {
	if fe.IsZero() {
		return 0
	}
	return 1
}

// equal reports whether two selector triples carry the same bits.
func (s Selectors) equal(o Selectors) bool {
	return bit(s.S0) == bit(o.S0) && bit(s.S1) == bit(o.S1) && bit(s.S2) == bit(o.S2)
}

// StandardSelectors builds the six recognized selector triples for the
// given field. LINEAR_HASH and CONTINUE share the same bit pattern (0,0,0);
// ABSORB shares LINEAR_HASH's pattern too (the distinction is row position,
// not selector value, per spec).
func StandardSelectors(field *core.Field) map[uint8]Selectors {
	return map[uint8]Selectors{
		LinearHashLabel:  selectorsFromBits(field, 0, 0, 0),
		MPVerifyLabel:    selectorsFromBits(field, 0, 0, 1),
		MRUpdateOldLabel: selectorsFromBits(field, 0, 1, 0),
		MRUpdateNewLabel: selectorsFromBits(field, 0, 1, 1),
		ReturnHashLabel:  selectorsFromBits(field, 1, 0, 0),
		ReturnStateLabel: selectorsFromBits(field, 1, 0, 1),
	}
}

// ContextKind distinguishes the three points at which a hasher lookup can be
// recorded.
type ContextKind int

const (
	CtxStart ContextKind = iota
	CtxAbsorb
	CtxReturn
)

// HasherContext carries the extra data a lookup's context needs. NextState
// is only meaningful when Kind == CtxAbsorb: it holds the full state after
// the absorb step, so the reduction can compute next_rate[i] - rate[i].
type HasherContext struct {
	Kind      ContextKind
	NextState HasherState
}

// LabelFor is the pure label <-> selector bijection of spec §4.4: given a
// selector triple and the context it was observed in, returns the protocol
// label it denotes, or false if no label applies in that context.
func LabelFor(selectors Selectors, ctx ContextKind, field *core.Field) (uint8, bool) {
	std := StandardSelectors(field)
	switch ctx {
	case CtxStart:
		for _, label := range []uint8{LinearHashLabel, MPVerifyLabel, MRUpdateOldLabel, MRUpdateNewLabel} {
			if selectors.equal(std[label]) {
				return label, true
			}
		}
	case CtxReturn:
		for _, label := range []uint8{ReturnHashLabel, ReturnStateLabel} {
			if selectors.equal(std[label]) {
				return label, true
			}
		}
	case CtxAbsorb:
		if selectors.equal(std[LinearHashLabel]) {
			return LinearHashLabel, true
		}
	}
	return 0, false
}
