package chiplets

import (
	"math/big"
	"testing"

	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"
)

func testField(t *testing.T) *core.Field {
	t.Helper()
	modulus, ok := new(big.Int).SetString("18446744069414584321", 10)
	if !ok {
		t.Fatalf("failed to parse test field modulus")
	}
	f, err := core.NewField(modulus)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

func TestLabelForBijection(t *testing.T) {
	field := testField(t)
	std := StandardSelectors(field)

	startLabels := []uint8{LinearHashLabel, MPVerifyLabel, MRUpdateOldLabel, MRUpdateNewLabel}
	returnLabels := []uint8{ReturnHashLabel, ReturnStateLabel}

	for _, label := range startLabels {
		t.Run("start", func(t *testing.T) {
			got, ok := LabelFor(std[label], CtxStart, field)
			if !ok || got != label {
				t.Errorf("LabelFor(std[%d], CtxStart) = (%d, %v), want (%d, true)", label, got, ok, label)
			}
		})
	}
	for _, label := range returnLabels {
		t.Run("return", func(t *testing.T) {
			got, ok := LabelFor(std[label], CtxReturn, field)
			if !ok || got != label {
				t.Errorf("LabelFor(std[%d], CtxReturn) = (%d, %v), want (%d, true)", label, got, ok, label)
			}
		})
	}

	// A Return-only selector triple must not resolve under Start context,
	// and vice versa: the bijection is context-scoped.
	if _, ok := LabelFor(std[ReturnHashLabel], CtxStart, field); ok {
		t.Errorf("RETURN_HASH selectors resolved under CtxStart, want false")
	}
	if _, ok := LabelFor(std[MPVerifyLabel], CtxReturn, field); ok {
		t.Errorf("MP_VERIFY selectors resolved under CtxReturn, want false")
	}

	// Absorb only ever recognizes LINEAR_HASH.
	if got, ok := LabelFor(std[LinearHashLabel], CtxAbsorb, field); !ok || got != LinearHashLabel {
		t.Errorf("LabelFor(LINEAR_HASH, CtxAbsorb) = (%d, %v), want (%d, true)", got, ok, LinearHashLabel)
	}
	if _, ok := LabelFor(std[MPVerifyLabel], CtxAbsorb, field); ok {
		t.Errorf("MP_VERIFY selectors resolved under CtxAbsorb, want false")
	}
}
