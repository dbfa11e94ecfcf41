package chiplets

import "github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"

// SiblingTable is the running-product auxiliary argument proving that a
// Merkle update consumed the same sibling path for the old and new root
// verifications: MR_UPDATE_OLD legs insert (index, sibling) pairs in
// leaf-to-root order, MR_UPDATE_NEW legs remove them in the same
// leaf-to-root order (both legs traverse the path in the same direction
// within one UpdateMerkleRoot call, so consumption is FIFO, not a stack). A
// correct update returns the running product to its starting value.
//
// beta is this argument's own challenge vector (independent of the bus's
// alpha), length >= 6.
type SiblingTable struct {
	field   *core.Field
	beta    []*core.FieldElement
	product *core.FieldElement
	stack   []*core.FieldElement
}

// NewSiblingTable creates an empty, balanced sibling table.
func NewSiblingTable(field *core.Field, beta []*core.FieldElement) (*SiblingTable, error) {
	if len(beta) < 6 {
		return nil, newError(ErrChallengeVectorTooShort, "sibling table challenge vector must have length >= 6")
	}
	return &SiblingTable{
		field:   field,
		beta:    beta,
		product: field.One(),
	}, nil
}

func (st *SiblingTable) reduce(index *core.FieldElement, sibling [DigestLen]*core.FieldElement) *core.FieldElement {
	acc := st.beta[0]
	acc = acc.Add(st.beta[1].Mul(index))
	for i := 0; i < DigestLen; i++ {
		acc = acc.Add(st.beta[i+2].Mul(sibling[i]))
	}
	return acc
}

// Add inserts (index, sibling) into the logical table at the given step
// (step is the trace address of the leg that produced this entry; it is
// accepted for callers that want to audit ordering but is not otherwise
// interpreted here since insertion order is already the stack's own
// append order).
func (st *SiblingTable) Add(step uint32, index *core.FieldElement, sibling [DigestLen]*core.FieldElement) {
	reduced := st.reduce(index, sibling)
	st.product = st.product.Mul(reduced)
	st.stack = append(st.stack, reduced)
}

// Remove consumes the oldest outstanding entry (FIFO, matching insertion
// order leg-for-leg within one UpdateMerkleRoot call). index/sibling are
// this leg's own (MR_UPDATE_NEW-side) values, not the ones that were
// inserted; the running product is divided by their reduction, so Balanced
// only holds if every MR_UPDATE_NEW leg supplied the same (index, sibling)
// as the matching MR_UPDATE_OLD leg, in the same order.
func (st *SiblingTable) Remove(step uint32, index *core.FieldElement, sibling [DigestLen]*core.FieldElement) error {
	if len(st.stack) == 0 {
		return newError(ErrQueueUnderflow, "sibling table remove on empty table")
	}
	st.stack = st.stack[1:]
	reduced := st.reduce(index, sibling)
	inv, err := reduced.Inv()
	if err != nil {
		return wrapError(ErrUnknown, "sibling table entry is not invertible", err)
	}
	st.product = st.product.Mul(inv)
	return nil
}

// Balanced reports whether the running product has returned to its
// starting value (1) and every inserted entry has been removed. A false
// result is a soundness failure, not a programming error: per the error
// handling design it is not observed by this package and instead surfaces
// later in the STARK verifier; this method exists so tests (and an
// embedding verifier) can check it directly.
func (st *SiblingTable) Balanced() bool {
	return len(st.stack) == 0 && st.product.IsOne()
}
