package vybiumchiplets

import (
	"math/big"

	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/chiplets"
	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"
	"github.com/vybium/vybium-chiplets/internal/vybium-chiplets/utils"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// HashChiplet is the public wrapper around the hash chiplet's protocol
// engine: linear hash, merge, span-block absorption, Merkle verify, and
// Merkle update, each recording the lookups a Bus needs to later check
// against the main trace's requests.
type HashChiplet struct {
	field    *core.Field
	internal *chiplets.HashChiplet
}

// NewHashChiplet creates an empty hash chiplet from config. siblingBeta is
// the challenge vector for this chiplet's sibling-table argument (length
// >= 6); pass nil to have one derived deterministically from config's field
// (suitable for tests, not for a real Fiat-Shamir transcript).
func NewHashChiplet(config *Config, siblingBeta []*FieldElement) (*HashChiplet, error) {
	internalConfig, err := config.toInternal()
	if err != nil {
		return nil, err
	}
	f, err := core.NewField(internalConfig.FieldModulus)
	if err != nil {
		return nil, &VMError{Code: ErrFieldCreation, Message: "failed to create field", Cause: err}
	}
	if siblingBeta == nil {
		siblingBeta = make([]*FieldElement, 6)
		for i := range siblingBeta {
			siblingBeta[i] = f.NewElementFromInt64(int64(i + 1))
		}
	}
	hc, err := chiplets.NewHashChiplet(f, siblingBeta)
	if err != nil {
		return nil, wrapInternal(ErrChipletOperation, "failed to create hash chiplet", err)
	}
	return &HashChiplet{field: f, internal: hc}, nil
}

// Field returns the field this chiplet runs over.
func (hc *HashChiplet) Field() *Field {
	return hc.field
}

// Trace returns the chiplet's accumulated hasher trace.
func (hc *HashChiplet) Trace() *chiplets.HasherTrace {
	return hc.internal.Trace()
}

// Permute runs one sponge permutation over state.
func (hc *HashChiplet) Permute(state HasherState) (uint32, HasherState, error) {
	addr, out, err := hc.internal.Permute(state)
	if err != nil {
		return 0, HasherState{}, wrapInternal(ErrChipletOperation, "permute failed", err)
	}
	return addr, out, nil
}

// Merge builds the fresh state from two digests and runs one permutation.
func (hc *HashChiplet) Merge(h1, h2 Digest) (uint32, Digest, error) {
	addr, out, err := hc.internal.Merge(h1, h2)
	if err != nil {
		return 0, Digest{}, wrapInternal(ErrChipletOperation, "merge failed", err)
	}
	return addr, out, nil
}

// HashSpanBlock sequentially absorbs instruction batches into a running
// sponge state, one permutation per subsequent batch.
func (hc *HashChiplet) HashSpanBlock(opBatches [][chiplets.Rate]*FieldElement, numOpGroups *FieldElement) (uint32, Digest, error) {
	addr, out, err := hc.internal.HashSpanBlock(opBatches, numOpGroups)
	if err != nil {
		return 0, Digest{}, wrapInternal(ErrChipletOperation, "hash_span_block failed", err)
	}
	return addr, out, nil
}

// BuildMerkleRoot verifies a Merkle path of length len(path) against leaf
// value at the given leaf index, returning the recomputed root.
func (hc *HashChiplet) BuildMerkleRoot(value Digest, path []Digest, index uint64) (uint32, Digest, error) {
	addr, out, err := hc.internal.BuildMerkleRoot(value, path, index)
	if err != nil {
		return 0, Digest{}, wrapInternal(ErrChipletOperation, "build_merkle_root failed", err)
	}
	return addr, out, nil
}

// UpdateMerkleRoot performs two Merkle verifications sharing the same
// path: one proving the old leaf value, one proving the new leaf value,
// threading both through the chiplet's shared sibling-table argument.
func (hc *HashChiplet) UpdateMerkleRoot(oldValue, newValue Digest, path []Digest, index uint64) (oldAddr uint32, oldRoot Digest, newAddr uint32, newRoot Digest, err error) {
	oldAddr, oldRoot, newAddr, newRoot, err = hc.internal.UpdateMerkleRoot(oldValue, newValue, path, index)
	if err != nil {
		return 0, Digest{}, 0, Digest{}, wrapInternal(ErrChipletOperation, "update_merkle_root failed", err)
	}
	return
}

// Bus is the public wrapper around the chiplets bus permutation argument:
// it records request/response pairings at cycle granularity and produces
// the b_chip auxiliary column from them.
type Bus struct {
	field    *core.Field
	internal *chiplets.ChipletsBus
}

// NewBus creates an empty bus from config.
func NewBus(config *Config) (*Bus, error) {
	internalConfig, err := config.toInternal()
	if err != nil {
		return nil, err
	}
	f, err := core.NewField(internalConfig.FieldModulus)
	if err != nil {
		return nil, &VMError{Code: ErrFieldCreation, Message: "failed to create field", Cause: err}
	}
	return &Bus{field: f, internal: chiplets.NewChipletsBus(f)}, nil
}

// RequestHasherSingle records that a single-hasher-lookup request exists at
// cycle.
func (b *Bus) RequestHasherSingle(cycle uint32, lookup *chiplets.HasherLookup) error {
	if err := b.internal.RequestHasherSingle(cycle, lookup); err != nil {
		return wrapInternal(ErrBusOperation, "request_hasher_single failed", err)
	}
	return nil
}

// ProvideHasherSingle records that a single-hasher-lookup response exists
// at cycle.
func (b *Bus) ProvideHasherSingle(cycle uint32, lookup *chiplets.HasherLookup) error {
	if err := b.internal.ProvideHasherSingle(cycle, lookup); err != nil {
		return wrapInternal(ErrBusOperation, "provide_hasher_single failed", err)
	}
	return nil
}

// EnqueueHasherRequest pushes a deferred-emission hasher lookup.
func (b *Bus) EnqueueHasherRequest(lookup chiplets.HasherLookup) {
	b.internal.EnqueueHasherRequest(lookup)
}

// SendQueuedHasherRequest pops the most recently enqueued hasher lookup
// and records it as a request at cycle.
func (b *Bus) SendQueuedHasherRequest(cycle uint32) error {
	if err := b.internal.SendQueuedHasherRequest(cycle); err != nil {
		return wrapInternal(ErrBusOperation, "send_queued_hasher_request failed", err)
	}
	return nil
}

// QueueEmpty reports whether the deferred-hasher-request queue has been
// fully drained.
func (b *Bus) QueueEmpty() bool {
	return b.internal.QueueEmpty()
}

// BuildAuxiliaryColumn materializes the b_chip column from alpha over
// traceLength rows.
func (b *Bus) BuildAuxiliaryColumn(alpha []*FieldElement, traceLength int) ([]*FieldElement, error) {
	column, err := b.internal.BuildAuxiliaryColumn(alpha, traceLength)
	if err != nil {
		return nil, wrapInternal(ErrBusOperation, "build_auxiliary_column failed", err)
	}
	return column, nil
}

// Channel is the Fiat-Shamir transcript challenges are drawn from.
type Channel = utils.Channel

// DeriveChallenges draws n field elements (n >= 16) from channel for use as
// the bus's reduction-scheme challenge vector.
func DeriveChallenges(channel *Channel, f *Field, n int) ([]*FieldElement, error) {
	alpha, err := chiplets.DeriveChallenges(channel, f, n)
	if err != nil {
		return nil, wrapInternal(ErrBusOperation, "derive_challenges failed", err)
	}
	return alpha, nil
}

// wrapInternal adapts an internal chiplets error to the public VMError
// shape, preserving the original as Cause.
func wrapInternal(code ErrorCode, message string, err error) *VMError {
	return &VMError{Code: code, Message: message, Cause: err}
}

// ConvertToInternal bridges the public vybium-crypto field.Element
// representation to this subsystem's internal core.FieldElement, for
// callers integrating with the wider vybium-crypto-based ecosystem that
// hold public field elements (e.g. public inputs coming from a STARK
// prover's own Fiat-Shamir transcript).
func ConvertToInternal(f *Field, elems []field.Element) []*FieldElement {
	result := make([]*FieldElement, len(elems))
	for i, e := range elems {
		result[i] = f.NewElement(new(big.Int).SetUint64(e.Value()))
	}
	return result
}

// ConvertFromInternal bridges this subsystem's internal core.FieldElement
// back to the public vybium-crypto field.Element representation.
func ConvertFromInternal(elems []*FieldElement) []field.Element {
	result := make([]field.Element, len(elems))
	for i, e := range elems {
		result[i] = field.New(e.Big().Uint64())
	}
	return result
}
