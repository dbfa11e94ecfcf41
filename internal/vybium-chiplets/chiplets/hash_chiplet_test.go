package chiplets

import (
	"testing"

	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"
)

func testChallenges(t *testing.T, field *core.Field, n int) []*core.FieldElement {
	t.Helper()
	alpha := make([]*core.FieldElement, n)
	for i := 0; i < n; i++ {
		alpha[i] = field.NewElementFromInt64(int64(i + 2))
	}
	return alpha
}

func newTestChiplet(t *testing.T) (*core.Field, *HashChiplet) {
	t.Helper()
	field := testField(t)
	beta := testChallenges(t, field, 6)
	hc, err := NewHashChiplet(field, beta)
	if err != nil {
		t.Fatalf("NewHashChiplet: %v", err)
	}
	return field, hc
}

func sampleState(field *core.Field) HasherState {
	var s HasherState
	for i := 0; i < Width; i++ {
		s[i] = field.NewElementFromInt64(int64(i + 1))
	}
	return s
}

func sampleWord(field *core.Field, base int64) [DigestLen]*core.FieldElement {
	var w [DigestLen]*core.FieldElement
	for i := range w {
		w[i] = field.NewElementFromInt64(base + int64(i))
	}
	return w
}

// TestPermuteAddressDisciplineAndTraceLength covers testable properties 3
// and 4 (§8) for a bare permute.
func TestPermuteAddressDisciplineAndTraceLength(t *testing.T) {
	field, hc := newTestChiplet(t)
	state := sampleState(field)

	startAddr, _, err := hc.Permute(state)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}
	if startAddr%8 != 1 {
		t.Errorf("Start addr = %d, want =1 (mod 8)", startAddr)
	}
	if hc.Trace().TraceLen() != 8 {
		t.Errorf("trace length after one permutation = %d, want 8", hc.Trace().TraceLen())
	}
}

// TestBuildMerkleRootTraceLength covers property 4: trace grows by
// 8*len(path).
func TestBuildMerkleRootTraceLength(t *testing.T) {
	field, hc := newTestChiplet(t)
	leaf := sampleWord(field, 1)
	path := [][DigestLen]*core.FieldElement{
		sampleWord(field, 10),
		sampleWord(field, 20),
		sampleWord(field, 30),
	}

	startAddr, _, err := hc.BuildMerkleRoot(leaf, path, 5)
	if err != nil {
		t.Fatalf("BuildMerkleRoot: %v", err)
	}
	if startAddr != 1 {
		t.Errorf("start addr = %d, want 1", startAddr)
	}
	wantLen := 8 * len(path)
	if hc.Trace().TraceLen() != wantLen {
		t.Errorf("trace length = %d, want %d", hc.Trace().TraceLen(), wantLen)
	}
}

// TestUpdateMerkleRootTraceLengthAndSiblingBalance covers properties 2 and
// 4: trace grows by 16*len(path), and the sibling table returns to balance.
func TestUpdateMerkleRootTraceLengthAndSiblingBalance(t *testing.T) {
	field, hc := newTestChiplet(t)
	oldLeaf := sampleWord(field, 1)
	newLeaf := sampleWord(field, 100)
	path := [][DigestLen]*core.FieldElement{
		sampleWord(field, 10),
		sampleWord(field, 20),
		sampleWord(field, 30),
	}

	_, _, _, _, err := hc.UpdateMerkleRoot(oldLeaf, newLeaf, path, 5)
	if err != nil {
		t.Fatalf("UpdateMerkleRoot: %v", err)
	}

	wantLen := 16 * len(path)
	if hc.Trace().TraceLen() != wantLen {
		t.Errorf("trace length = %d, want %d", hc.Trace().TraceLen(), wantLen)
	}
	if !hc.siblings.Balanced() {
		t.Errorf("sibling table not balanced after matched insert/remove legs")
	}
}

// TestUpdateMerkleRootSiblingImbalanceOnMismatchedPath exercises the
// negative case: inserting one sibling set under MR_UPDATE_OLD and
// removing a different one under MR_UPDATE_NEW must NOT balance.
func TestUpdateMerkleRootSiblingImbalanceOnMismatchedPath(t *testing.T) {
	field := testField(t)
	beta := testChallenges(t, field, 6)
	hc, err := NewHashChiplet(field, beta)
	if err != nil {
		t.Fatalf("NewHashChiplet: %v", err)
	}

	oldLeaf := sampleWord(field, 1)
	newLeaf := sampleWord(field, 100)

	if _, _, err := hc.merkleLegs(MRUpdateOldLabel, oldLeaf, [][DigestLen]*core.FieldElement{sampleWord(field, 10)}, 0, siblingInsert); err != nil {
		t.Fatalf("merkleLegs(old): %v", err)
	}
	// A mismatched second path for the "new" leg: the sibling table tracks
	// a different sibling word, so the running product cannot return to 1.
	if _, _, err := hc.merkleLegs(MRUpdateNewLabel, newLeaf, [][DigestLen]*core.FieldElement{sampleWord(field, 999)}, 0, siblingRemove); err != nil {
		t.Fatalf("merkleLegs(new): %v", err)
	}

	if hc.siblings.Balanced() {
		t.Errorf("sibling table balanced on mismatched sibling data, want imbalance")
	}
}

// TestHashSpanBlockSingleAndMultiBatch exercises both branches of
// hash_span_block.
func TestHashSpanBlockSingleAndMultiBatch(t *testing.T) {
	field, hc := newTestChiplet(t)

	batch := [Rate]*core.FieldElement{}
	for i := range batch {
		batch[i] = field.NewElementFromInt64(int64(i + 1))
	}

	t.Run("single batch", func(t *testing.T) {
		_, _, err := hc.HashSpanBlock([][Rate]*core.FieldElement{batch}, field.NewElementFromInt64(2))
		if err != nil {
			t.Fatalf("HashSpanBlock: %v", err)
		}
		if hc.Trace().TraceLen() != 8 {
			t.Errorf("trace length = %d, want 8", hc.Trace().TraceLen())
		}
	})

	field2, hc2 := newTestChiplet(t)
	batch2 := [Rate]*core.FieldElement{}
	for i := range batch2 {
		batch2[i] = field2.NewElementFromInt64(int64(i + 10))
	}
	t.Run("two batches", func(t *testing.T) {
		_, _, err := hc2.HashSpanBlock([][Rate]*core.FieldElement{batch, batch2}, field2.NewElementFromInt64(12))
		if err != nil {
			t.Fatalf("HashSpanBlock: %v", err)
		}
		if hc2.Trace().TraceLen() != 16 {
			t.Errorf("trace length = %d, want 16", hc2.Trace().TraceLen())
		}
	})
}

// TestBusBalancesForHonestPermute is an end-to-end check of the reduction
// scheme/BuildAuxiliaryColumn wiring (property 1 and 5, §8): a decoder that
// requests exactly what the hasher provides must balance to 1.
func TestBusBalancesForHonestPermute(t *testing.T) {
	field, hc := newTestChiplet(t)
	input := sampleState(field)
	expected := input
	startAddr, output, err := hc.Permute(expected)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}

	bus := NewChipletsBus(field)
	startLookup := &HasherLookup{
		Label: LinearHashLabel,
		State: input,
		Addr:  startAddr,
		Index: field.Zero(),
		Ctx:   HasherContext{Kind: CtxStart},
	}
	returnLookup := &HasherLookup{
		Label: ReturnStateLabel,
		State: output,
		Addr:  uint32(hc.Trace().TraceLen()),
		Index: field.Zero(),
		Ctx:   HasherContext{Kind: CtxReturn},
	}
	if err := bus.RequestHasherSingle(startAddr, startLookup); err != nil {
		t.Fatalf("RequestHasherSingle(start): %v", err)
	}
	if err := bus.RequestHasherSingle(uint32(hc.Trace().TraceLen()), returnLookup); err != nil {
		t.Fatalf("RequestHasherSingle(return): %v", err)
	}

	if _, err := hc.FillTrace(bus); err != nil {
		t.Fatalf("FillTrace: %v", err)
	}
	if !bus.QueueEmpty() {
		t.Errorf("queued hasher requests not drained")
	}

	alpha := testChallenges(t, field, 16)
	traceLen := hc.Trace().TraceLen()
	column, err := bus.BuildAuxiliaryColumn(alpha, traceLen)
	if err != nil {
		t.Fatalf("BuildAuxiliaryColumn: %v", err)
	}
	if !column[traceLen-1].IsOne() {
		t.Errorf("b_chip final = %s, want 1", column[traceLen-1].String())
	}
}

// TestBusImbalanceOnMissingResponse checks that an unanswered request does
// not spuriously balance: deliberately never call FillTrace.
func TestBusImbalanceOnMissingResponse(t *testing.T) {
	field, hc := newTestChiplet(t)
	input := sampleState(field)
	startAddr, _, err := hc.Permute(input)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}

	bus := NewChipletsBus(field)
	lookup := &HasherLookup{
		Label: LinearHashLabel,
		State: input,
		Addr:  startAddr,
		Index: field.Zero(),
		Ctx:   HasherContext{Kind: CtxStart},
	}
	if err := bus.RequestHasherSingle(startAddr, lookup); err != nil {
		t.Fatalf("RequestHasherSingle: %v", err)
	}

	alpha := testChallenges(t, field, 16)
	traceLen := hc.Trace().TraceLen()
	column, err := bus.BuildAuxiliaryColumn(alpha, traceLen)
	if err != nil {
		t.Fatalf("BuildAuxiliaryColumn: %v", err)
	}
	if column[traceLen-1].IsOne() {
		t.Errorf("b_chip balanced to 1 despite an unanswered request")
	}
}
