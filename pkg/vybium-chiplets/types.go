package vybiumchiplets

import (
	"math/big"

	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/chiplets"
	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"
)

// FieldElement is an element of the field the chiplet subsystem runs over.
type FieldElement = core.FieldElement

// Field is the finite field the chiplet subsystem runs over.
type Field = core.Field

// Digest is a 4-element Rescue/Poseidon-style hash output, the unit every
// Merkle leaf, sibling, and chiplet digest is expressed in.
type Digest = [chiplets.DigestLen]*FieldElement

// HasherState is the full W=12 sponge state (4 capacity + 8 rate).
type HasherState = chiplets.HasherState

// Config is the chiplet subsystem's configuration.
type Config struct {
	// FieldModulus is the decimal string of the field modulus to run over.
	FieldModulus string

	// MinChallenges is the minimum length required of a challenge vector
	// fed to the reduction scheme (must be >= 16).
	MinChallenges int
}

// DefaultConfig returns a configuration using the Goldilocks field
// (2^64 - 2^32 + 1), matching the teacher repo's DefaultVMConfig.
func DefaultConfig() *Config {
	return &Config{
		FieldModulus:  "18446744069414584321",
		MinChallenges: chiplets.MinChallenges,
	}
}

func (c *Config) toInternal() (*chiplets.Config, error) {
	internal := chiplets.NewDefaultConfig()
	if c.FieldModulus != "" {
		modulus, ok := new(big.Int).SetString(c.FieldModulus, 10)
		if !ok {
			return nil, &VMError{Code: ErrInvalidConfig, Message: "invalid field modulus"}
		}
		internal = internal.WithFieldModulus(modulus)
	}
	if c.MinChallenges > 0 {
		internal = internal.WithMinChallenges(c.MinChallenges)
	}
	if err := internal.Validate(); err != nil {
		return nil, &VMError{Code: ErrInvalidConfig, Message: "configuration failed validation", Cause: err}
	}
	return internal, nil
}
