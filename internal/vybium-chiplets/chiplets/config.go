package chiplets

import "math/big"

// Config is the chiplet subsystem's configuration: the field modulus it
// runs over and the minimum length required of a challenge vector. Modeled
// on utils.Config's fluent With.../Validate()/Clone() shape, scoped down
// to the knobs this subsystem actually has — it has no FRI/evaluation
// domain/trace-length parameters of its own, those belong to the STARK
// prover this core does not implement.
type Config struct {
	FieldModulus  *big.Int
	MinChallenges int
}

// NewDefaultConfig returns a configuration using the Goldilocks field
// (2^64 - 2^32 + 1), matching the teacher's DefaultVMConfig.
func NewDefaultConfig() *Config {
	modulus, _ := new(big.Int).SetString("18446744069414584321", 10)
	return &Config{
		FieldModulus:  modulus,
		MinChallenges: MinChallenges,
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.FieldModulus == nil || c.FieldModulus.Cmp(big.NewInt(2)) <= 0 {
		return newError(ErrUnknown, "field modulus must be greater than 2")
	}
	if c.MinChallenges < MinChallenges {
		return newError(ErrChallengeVectorTooShort, "configured minimum challenge count is below the reduction scheme's requirement")
	}
	return nil
}

// WithFieldModulus sets the field modulus.
func (c *Config) WithFieldModulus(modulus *big.Int) *Config {
	c.FieldModulus = new(big.Int).Set(modulus)
	return c
}

// WithMinChallenges sets the minimum challenge-vector length.
func (c *Config) WithMinChallenges(n int) *Config {
	c.MinChallenges = n
	return c
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	return &Config{
		FieldModulus:  new(big.Int).Set(c.FieldModulus),
		MinChallenges: c.MinChallenges,
	}
}
