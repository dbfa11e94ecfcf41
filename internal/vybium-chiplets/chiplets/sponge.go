package chiplets

import "github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"

// Sponge wraps the teacher's configurable-width Poseidon permutation
// (core.EnhancedPoseidonHash) at the spec's fixed Width=12/Rate=8
// parameterization, exposing the raw row-by-row permutation rather than
// the collapsed sponge-hash API: the hasher trace needs every intermediate
// round state, not just a final digest.
//
// This instantiation uses PermutationRounds full rounds and no partial
// rounds: the concrete Poseidon round schedule (how many full vs. partial
// rounds a given security level needs) is a field/cryptography parameter,
// which is explicitly out of scope here — see DESIGN.md. What matters for
// the bus and hasher-engine semantics is that one round transition produces
// exactly one trace row, giving the spec's 8-row permutation cycle (1
// initial row + PermutationRounds transitions).
type Sponge struct {
	hash *core.EnhancedPoseidonHash
}

// NewSponge builds the W=12/C=4/R=8 sponge permutation over field.
func NewSponge(field *core.Field) (*Sponge, error) {
	params := &core.PoseidonParameters{
		SecurityLevel: 128,
		FieldSize:     field.Modulus().BitLen(),
		Width:         Width,
		Rate:          Rate,
		RoundsFull:    PermutationRounds,
		RoundsPartial: 0,
		SboxPower:     5,
		FieldModulus:  field.Modulus().String(),
	}
	h, err := core.NewEnhancedPoseidonHash(field, params)
	if err != nil {
		return nil, wrapError(ErrUnknown, "failed to build sponge permutation", err)
	}
	return &Sponge{hash: h}, nil
}

// PermuteSteps runs the permutation on state and returns the row-by-row
// trace: PermutationRounds+1 snapshots, snapshots[0] == state (unmodified)
// and snapshots[PermutationRounds] the final, fully-permuted state.
func (s *Sponge) PermuteSteps(state HasherState) [PermutationRounds + 1]HasherState {
	flat := make([]*core.FieldElement, Width)
	copy(flat, state[:])

	rows := s.hash.PermuteSteps(flat, PermutationRounds)

	var out [PermutationRounds + 1]HasherState
	for i, row := range rows {
		copy(out[i][:], row)
	}
	return out
}
