package chiplets

import "github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"

type recordedLookup struct {
	addr uint32
	row  *ChipletsLookupRow
}

// HashChiplet drives the hash chiplet's protocol engine: linear hash,
// merge, span-block absorption, Merkle verify, and Merkle update. Each
// public operation appends to the underlying HasherTrace and records the
// lookup descriptors that must later be provided to a ChipletsBus.
//
// A single SiblingTable accumulates across every UpdateMerkleRoot call made
// on this chiplet during its lifetime, per spec §4.3.
type HashChiplet struct {
	field     *core.Field
	sponge    *Sponge
	trace     *HasherTrace
	selectors map[uint8]Selectors

	lookups  []recordedLookup
	siblings *SiblingTable
}

// NewHashChiplet creates an empty hash chiplet over field. siblingBeta is
// the challenge vector used by this chiplet's sibling-table argument
// (length >= 6, independent of the bus's alpha).
func NewHashChiplet(field *core.Field, siblingBeta []*core.FieldElement) (*HashChiplet, error) {
	sponge, err := NewSponge(field)
	if err != nil {
		return nil, err
	}
	siblings, err := NewSiblingTable(field, siblingBeta)
	if err != nil {
		return nil, err
	}
	return &HashChiplet{
		field:     field,
		sponge:    sponge,
		trace:     NewHasherTrace(field),
		selectors: StandardSelectors(field),
		siblings:  siblings,
	}, nil
}

// Trace returns the chiplet's accumulated hasher trace.
func (hc *HashChiplet) Trace() *HasherTrace {
	return hc.trace
}

func (hc *HashChiplet) record(addr uint32, lookup HasherLookup) {
	hc.lookups = append(hc.lookups, recordedLookup{addr: addr, row: NewHasherRow(&lookup)})
}

// Permute runs one sponge permutation over state, recording a Start lookup
// (LINEAR_HASH) and a Return lookup (RETURN_STATE) with the full
// post-permutation state.
func (hc *HashChiplet) Permute(state HasherState) (uint32, HasherState, error) {
	startAddr := hc.trace.NextRowAddr()
	hc.record(startAddr, HasherLookup{
		Label: LinearHashLabel,
		State: state,
		Addr:  startAddr,
		Index: hc.field.Zero(),
		Ctx:   HasherContext{Kind: CtxStart},
	})

	hc.trace.AppendPermutation(hc.sponge, &state, hc.selectors[LinearHashLabel], hc.selectors[ReturnStateLabel])

	retAddr := uint32(hc.trace.TraceLen())
	hc.record(retAddr, HasherLookup{
		Label: ReturnStateLabel,
		State: state,
		Addr:  retAddr,
		Index: hc.field.Zero(),
		Ctx:   HasherContext{Kind: CtxReturn},
	})

	return startAddr, state, nil
}

// Merge builds the fresh state [0;C] || h1 || h2 and runs one permutation,
// recording Start/Return(RETURN_HASH) lookups, returning the digest.
func (hc *HashChiplet) Merge(h1, h2 [DigestLen]*core.FieldElement) (uint32, [DigestLen]*core.FieldElement, error) {
	var state HasherState
	for i := 0; i < Capacity; i++ {
		state[i] = hc.field.Zero()
	}
	copy(state[Capacity:Capacity+DigestLen], h1[:])
	copy(state[Capacity+DigestLen:Width], h2[:])

	startAddr := hc.trace.NextRowAddr()
	hc.record(startAddr, HasherLookup{
		Label: LinearHashLabel,
		State: state,
		Addr:  startAddr,
		Index: hc.field.Zero(),
		Ctx:   HasherContext{Kind: CtxStart},
	})

	hc.trace.AppendPermutation(hc.sponge, &state, hc.selectors[LinearHashLabel], hc.selectors[ReturnHashLabel])

	retAddr := uint32(hc.trace.TraceLen())
	hc.record(retAddr, HasherLookup{
		Label: ReturnHashLabel,
		State: state,
		Addr:  retAddr,
		Index: hc.field.Zero(),
		Ctx:   HasherContext{Kind: CtxReturn},
	})

	return startAddr, state.Digest(), nil
}

// HashSpanBlock sequentially absorbs instruction batches: capacity[0] =
// numOpGroups, rate = first batch's groups, then one permutation per
// subsequent batch with an Absorb lookup recorded at each permutation
// boundary.
func (hc *HashChiplet) HashSpanBlock(opBatches [][Rate]*core.FieldElement, numOpGroups *core.FieldElement) (uint32, [DigestLen]*core.FieldElement, error) {
	if len(opBatches) == 0 {
		return 0, [DigestLen]*core.FieldElement{}, newError(ErrMalformedLookup, "hash_span_block requires at least one op batch")
	}

	var state HasherState
	state[0] = numOpGroups
	for i := 1; i < Capacity; i++ {
		state[i] = hc.field.Zero()
	}
	copy(state[Capacity:Width], opBatches[0][:])

	startAddr := hc.trace.NextRowAddr()
	hc.record(startAddr, HasherLookup{
		Label: LinearHashLabel,
		State: state,
		Addr:  startAddr,
		Index: hc.field.Zero(),
		Ctx:   HasherContext{Kind: CtxStart},
	})

	linearHashSel := hc.selectors[LinearHashLabel]
	returnHashSel := hc.selectors[ReturnHashLabel]

	if len(opBatches) == 1 {
		hc.trace.AppendPermutation(hc.sponge, &state, linearHashSel, returnHashSel)
	} else {
		hc.trace.AppendPermutation(hc.sponge, &state, linearHashSel, linearHashSel) // (LINEAR_HASH, ABSORB)

		for i := 1; i < len(opBatches); i++ {
			pre := state
			for j := 0; j < Rate; j++ {
				state[Capacity+j] = state[Capacity+j].Add(opBatches[i][j])
			}
			post := state

			absorbAddr := uint32(hc.trace.TraceLen())
			hc.record(absorbAddr, HasherLookup{
				Label: LinearHashLabel,
				State: pre,
				Addr:  absorbAddr,
				Index: hc.field.Zero(),
				Ctx:   HasherContext{Kind: CtxAbsorb, NextState: post},
			})

			finalSel := linearHashSel // ABSORB shares LINEAR_HASH's selector pattern
			if i == len(opBatches)-1 {
				finalSel = returnHashSel
			}
			hc.trace.AppendPermutation(hc.sponge, &state, linearHashSel, finalSel) // (CONTINUE, ...)
		}
	}

	retAddr := uint32(hc.trace.TraceLen())
	hc.record(retAddr, HasherLookup{
		Label: ReturnHashLabel,
		State: state,
		Addr:  retAddr,
		Index: hc.field.Zero(),
		Ctx:   HasherContext{Kind: CtxReturn},
	})

	return startAddr, state.Digest(), nil
}

type siblingRole int

const (
	siblingNone siblingRole = iota
	siblingInsert
	siblingRemove
)

// merkleLegs drives one Merkle verification (a sequence of legs combining
// the running root with each path sibling) under the given protocol label.
// role controls whether each leg also updates the shared sibling table
// (insert for MR_UPDATE_OLD, remove for MR_UPDATE_NEW, none for plain
// MP_VERIFY).
func (hc *HashChiplet) merkleLegs(label uint8, value [DigestLen]*core.FieldElement, path [][DigestLen]*core.FieldElement, index uint64, role siblingRole) (uint32, [DigestLen]*core.FieldElement, error) {
	d := len(path)
	if d == 0 {
		return 0, [DigestLen]*core.FieldElement{}, newError(ErrInvalidPath, "merkle path must have at least one sibling")
	}
	if index >= (uint64(1) << uint(d)) {
		return 0, [DigestLen]*core.FieldElement{}, newError(ErrIndexOutOfRange, "leaf index out of range for path length")
	}

	mainSel := hc.selectors[label]
	partSel := Selectors{S0: hc.field.Zero(), S1: mainSel.S1, S2: mainSel.S2}
	returnHashSel := hc.selectors[ReturnHashLabel]

	cur := value
	curIndex := index
	var startAddr uint32

	for leg := 0; leg < d; leg++ {
		legBit := curIndex & 1
		sibling := path[leg]

		var state HasherState
		for i := 0; i < Capacity; i++ {
			state[i] = hc.field.Zero()
		}
		if legBit == 0 {
			copy(state[Capacity:Capacity+DigestLen], cur[:])
			copy(state[Capacity+DigestLen:Width], sibling[:])
		} else {
			copy(state[Capacity:Capacity+DigestLen], sibling[:])
			copy(state[Capacity+DigestLen:Width], cur[:])
		}

		if leg == 0 {
			startAddr = hc.trace.NextRowAddr()
			hc.record(startAddr, HasherLookup{
				Label: label,
				State: state,
				Addr:  startAddr,
				Index: hc.field.NewElementFromUint64(curIndex),
				Ctx:   HasherContext{Kind: CtxStart},
			})
		}

		switch role {
		case siblingInsert:
			hc.siblings.Add(hc.trace.NextRowAddr(), hc.field.NewElementFromUint64(curIndex), sibling)
		case siblingRemove:
			if err := hc.siblings.Remove(hc.trace.NextRowAddr(), hc.field.NewElementFromUint64(curIndex), sibling); err != nil {
				return 0, [DigestLen]*core.FieldElement{}, err
			}
		}

		initSel := mainSel
		if leg > 0 {
			initSel = partSel
		}
		finalSel := mainSel
		if leg == d-1 {
			finalSel = returnHashSel
		}

		initIndex := curIndex
		restIndex := curIndex >> 1
		if leg > 0 {
			initIndex = restIndex
		}

		hc.trace.AppendPermutationWithIndex(hc.sponge, &state, initSel, finalSel,
			hc.field.NewElementFromUint64(initIndex), hc.field.NewElementFromUint64(restIndex))

		curIndex >>= 1
		cur = state.Digest()

		if leg == d-1 {
			retAddr := uint32(hc.trace.TraceLen())
			hc.record(retAddr, HasherLookup{
				Label: ReturnHashLabel,
				State: state,
				Addr:  retAddr,
				Index: hc.field.NewElementFromUint64(curIndex),
				Ctx:   HasherContext{Kind: CtxReturn},
			})
		}
	}

	return startAddr, cur, nil
}

// BuildMerkleRoot verifies a Merkle path of length d = len(path) against
// leaf value at the given leaf index, returning the recomputed root.
func (hc *HashChiplet) BuildMerkleRoot(value [DigestLen]*core.FieldElement, path [][DigestLen]*core.FieldElement, index uint64) (uint32, [DigestLen]*core.FieldElement, error) {
	return hc.merkleLegs(MPVerifyLabel, value, path, index, siblingNone)
}

// UpdateMerkleRoot performs two Merkle verifications sharing the same
// path: one proving the old leaf value under MR_UPDATE_OLD (inserting each
// leg's sibling into the shared sibling table), one proving the new leaf
// value under MR_UPDATE_NEW (removing one entry per leg, oldest first, and
// dividing out that leg's own (index, sibling)).
func (hc *HashChiplet) UpdateMerkleRoot(oldValue, newValue [DigestLen]*core.FieldElement, path [][DigestLen]*core.FieldElement, index uint64) (oldAddr uint32, oldRoot [DigestLen]*core.FieldElement, newAddr uint32, newRoot [DigestLen]*core.FieldElement, err error) {
	oldAddr, oldRoot, err = hc.merkleLegs(MRUpdateOldLabel, oldValue, path, index, siblingInsert)
	if err != nil {
		return
	}
	newAddr, newRoot, err = hc.merkleLegs(MRUpdateNewLabel, newValue, path, index, siblingRemove)
	return
}

// FillTrace consumes the chiplet: every stored lookup is provided to bus at
// its recorded address (which serves as the bus cycle), and the sibling
// table accumulated by any UpdateMerkleRoot calls is returned for the
// caller to check balance against.
func (hc *HashChiplet) FillTrace(bus *ChipletsBus) (*SiblingTable, error) {
	for _, l := range hc.lookups {
		if err := bus.ProvideLookup(l.addr, l.row); err != nil {
			return nil, err
		}
	}
	hc.lookups = nil
	return hc.siblings, nil
}
