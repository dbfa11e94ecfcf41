package vybiumchiplets

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	internal, err := config.toInternal()
	if err != nil {
		t.Fatalf("DefaultConfig().toInternal() failed: %v", err)
	}
	if internal.MinChallenges < 16 {
		t.Errorf("MinChallenges = %d, want >= 16", internal.MinChallenges)
	}
}

func TestConfigRejectsBadModulus(t *testing.T) {
	config := &Config{FieldModulus: "not-a-number"}
	if _, err := config.toInternal(); err == nil {
		t.Errorf("toInternal with non-numeric modulus succeeded, want error")
	}
}

func TestConfigZeroValueFallsBackToDefaults(t *testing.T) {
	config := &Config{}
	internal, err := config.toInternal()
	if err != nil {
		t.Fatalf("toInternal on zero-value config failed: %v", err)
	}
	if internal.FieldModulus == nil {
		t.Errorf("zero-value config produced a nil field modulus")
	}
}
