package chiplets

import (
	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"
	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/utils"
)

// MinChallenges is the minimum length the bus's reduction scheme requires
// of a challenge vector (spec §6).
const MinChallenges = 16

// DeriveChallenges draws n field elements from channel, the Fiat-Shamir
// transcript the verifier and prover share. n must be at least
// MinChallenges when the result feeds BuildAuxiliaryColumn/Reduce.
func DeriveChallenges(channel *utils.Channel, field *core.Field, n int) ([]*core.FieldElement, error) {
	if n < MinChallenges {
		return nil, newError(ErrChallengeVectorTooShort, "requested fewer challenges than the reduction scheme requires")
	}
	alpha := make([]*core.FieldElement, n)
	for i := 0; i < n; i++ {
		alpha[i] = channel.ReceiveRandomFieldElement(field)
	}
	return alpha, nil
}
