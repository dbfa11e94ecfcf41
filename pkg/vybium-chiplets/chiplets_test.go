package vybiumchiplets

import (
	"testing"

	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/chiplets"
)

func TestNewHashChipletAndPermuteRoundTrip(t *testing.T) {
	config := DefaultConfig()
	hc, err := NewHashChiplet(config, nil)
	if err != nil {
		t.Fatalf("NewHashChiplet: %v", err)
	}

	var state HasherState
	for i := range state {
		state[i] = hc.Field().NewElementFromInt64(int64(i + 1))
	}

	startAddr, _, err := hc.Permute(state)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}
	if startAddr != 1 {
		t.Errorf("startAddr = %d, want 1", startAddr)
	}
	if hc.Trace().TraceLen() != 8 {
		t.Errorf("trace length = %d, want 8", hc.Trace().TraceLen())
	}
}

func TestNewBusRequestResponseBalances(t *testing.T) {
	config := DefaultConfig()
	hc, err := NewHashChiplet(config, nil)
	if err != nil {
		t.Fatalf("NewHashChiplet: %v", err)
	}
	bus, err := NewBus(config)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}

	var state HasherState
	for i := range state {
		state[i] = hc.Field().NewElementFromInt64(int64(i + 1))
	}
	startAddr, out, err := hc.Permute(state)
	if err != nil {
		t.Fatalf("Permute: %v", err)
	}

	startLookup := &chiplets.HasherLookup{
		Label: chiplets.LinearHashLabel,
		State: state,
		Addr:  startAddr,
		Index: hc.Field().Zero(),
		Ctx:   chiplets.HasherContext{Kind: chiplets.CtxStart},
	}
	returnLookup := &chiplets.HasherLookup{
		Label: chiplets.ReturnStateLabel,
		State: out,
		Addr:  uint32(hc.Trace().TraceLen()),
		Index: hc.Field().Zero(),
		Ctx:   chiplets.HasherContext{Kind: chiplets.CtxReturn},
	}
	if err := bus.RequestHasherSingle(startAddr, startLookup); err != nil {
		t.Fatalf("RequestHasherSingle: %v", err)
	}
	if err := bus.RequestHasherSingle(uint32(hc.Trace().TraceLen()), returnLookup); err != nil {
		t.Fatalf("RequestHasherSingle: %v", err)
	}
	if err := bus.ProvideHasherSingle(startAddr, startLookup); err != nil {
		t.Fatalf("ProvideHasherSingle: %v", err)
	}

	alpha := make([]*FieldElement, 16)
	for i := range alpha {
		alpha[i] = hc.Field().NewElementFromInt64(int64(i + 2))
	}
	traceLen := hc.Trace().TraceLen()
	column, err := bus.BuildAuxiliaryColumn(alpha, traceLen)
	if err != nil {
		t.Fatalf("BuildAuxiliaryColumn: %v", err)
	}
	if column[2] == nil || !column[2].IsOne() {
		t.Errorf("column[2] = %v, want 1 (matched request/response at cycle 1)", column[2])
	}
}

func TestQueuedHasherRequestLifecycle(t *testing.T) {
	config := DefaultConfig()
	bus, err := NewBus(config)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	if !bus.QueueEmpty() {
		t.Fatalf("fresh bus has a non-empty queue")
	}

	var state HasherState
	for i := range state {
		state[i] = bus.field.NewElementFromInt64(int64(i))
	}
	bus.EnqueueHasherRequest(chiplets.HasherLookup{
		Label: chiplets.LinearHashLabel,
		State: state,
		Addr:  1,
		Index: bus.field.Zero(),
		Ctx:   chiplets.HasherContext{Kind: chiplets.CtxStart},
	})
	if bus.QueueEmpty() {
		t.Fatalf("queue reported empty after an enqueue")
	}
	if err := bus.SendQueuedHasherRequest(1); err != nil {
		t.Fatalf("SendQueuedHasherRequest: %v", err)
	}
	if !bus.QueueEmpty() {
		t.Errorf("queue not empty after draining its only entry")
	}
}
