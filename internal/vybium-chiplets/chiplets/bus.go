package chiplets

import "github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"

// hintKind distinguishes what is known at a given cycle: a request only, a
// response only, or both (when the same cycle carries both sides of an
// interaction, e.g. a span-hash init that the decoder requests and the
// hasher provides in the same step).
type hintKind int

const (
	hintRequest hintKind = iota
	hintResponse
	hintBoth
)

type busHint struct {
	kind hintKind
	req  *ChipletsLookupRow
	resp *ChipletsLookupRow
}

// ChipletsBus records request/response pairings at cycle granularity and
// produces the b_chip auxiliary permutation column from them.
//
// Requests and responses are appended to their own vectors purely for
// bookkeeping (nothing in this package reads them back); the hint map is
// what actually drives auxiliary column construction, keyed by cycle.
type ChipletsBus struct {
	field *core.Field

	requestRows  []*ChipletsLookupRow
	responseRows []*ChipletsLookupRow
	hints        map[uint32]*busHint

	queuedHasherRequests []HasherLookup
}

// NewChipletsBus creates an empty bus over field.
func NewChipletsBus(field *core.Field) *ChipletsBus {
	return &ChipletsBus{
		field: field,
		hints: make(map[uint32]*busHint),
	}
}

// RequestLookup records that a request row exists at cycle. Fails if a
// request already exists at cycle: operations are serial, so two requests
// can never legitimately share a cycle.
func (b *ChipletsBus) RequestLookup(cycle uint32, row *ChipletsLookupRow) error {
	h, ok := b.hints[cycle]
	if !ok {
		b.hints[cycle] = &busHint{kind: hintRequest, req: row}
	} else if h.kind == hintResponse {
		h.kind = hintBoth
		h.req = row
	} else {
		return newError(ErrCycleCollision, "two requests recorded at the same cycle")
	}
	b.requestRows = append(b.requestRows, row)
	return nil
}

// ProvideLookup records a response at cycle. If a request already exists at
// cycle, the hint is upgraded to Both.
func (b *ChipletsBus) ProvideLookup(cycle uint32, row *ChipletsLookupRow) error {
	h, ok := b.hints[cycle]
	if !ok {
		b.hints[cycle] = &busHint{kind: hintResponse, resp: row}
	} else if h.kind == hintRequest {
		h.kind = hintBoth
		h.resp = row
	} else {
		return newError(ErrCycleCollision, "two responses recorded at the same cycle")
	}
	b.responseRows = append(b.responseRows, row)
	return nil
}

// RequestHasherSingle and the Provide/Multi/Bitwise/Memory variants below
// are typed convenience entry points pushing the concrete
// ChipletsLookupRow onto the matching vector.

func (b *ChipletsBus) RequestHasherSingle(cycle uint32, lookup *HasherLookup) error {
	return b.RequestLookup(cycle, NewHasherRow(lookup))
}

func (b *ChipletsBus) ProvideHasherSingle(cycle uint32, lookup *HasherLookup) error {
	return b.ProvideLookup(cycle, NewHasherRow(lookup))
}

func (b *ChipletsBus) RequestHasherMulti(cycle uint32, lookups []*HasherLookup) error {
	row, err := NewHasherMultiRow(lookups)
	if err != nil {
		return err
	}
	return b.RequestLookup(cycle, row)
}

func (b *ChipletsBus) ProvideHasherMulti(cycle uint32, lookups []*HasherLookup) error {
	row, err := NewHasherMultiRow(lookups)
	if err != nil {
		return err
	}
	return b.ProvideLookup(cycle, row)
}

func (b *ChipletsBus) RequestBitwise(cycle uint32, row *BitwiseLookup) error {
	return b.RequestLookup(cycle, NewBitwiseRow(row))
}

func (b *ChipletsBus) ProvideBitwise(cycle uint32, row *BitwiseLookup) error {
	return b.ProvideLookup(cycle, NewBitwiseRow(row))
}

func (b *ChipletsBus) RequestMemory(cycle uint32, row *MemoryLookup) error {
	return b.RequestLookup(cycle, NewMemoryRow(row))
}

func (b *ChipletsBus) ProvideMemory(cycle uint32, row *MemoryLookup) error {
	return b.ProvideLookup(cycle, NewMemoryRow(row))
}

// EnqueueHasherRequest pushes a deferred-emission hasher lookup: control
// blocks compute their hash once at block entry, but the matching bus
// request must be emitted later, at block exit/RESPAN, when the cycle is
// finally known. Consumers drain this LIFO in reverse order of enqueue via
// SendQueuedHasherRequest.
func (b *ChipletsBus) EnqueueHasherRequest(lookup HasherLookup) {
	b.queuedHasherRequests = append(b.queuedHasherRequests, lookup)
}

// SendQueuedHasherRequest pops the most recently enqueued hasher lookup and
// records it as a request at cycle. Fails if the queue is empty.
func (b *ChipletsBus) SendQueuedHasherRequest(cycle uint32) error {
	n := len(b.queuedHasherRequests)
	if n == 0 {
		return newError(ErrQueueUnderflow, "send_queued_hasher_request on an empty queue")
	}
	lookup := b.queuedHasherRequests[n-1]
	b.queuedHasherRequests = b.queuedHasherRequests[:n-1]
	return b.RequestHasherSingle(cycle, &lookup)
}

// QueueEmpty reports whether the deferred-hasher-request queue has been
// fully drained, an invariant finalization must hold.
func (b *ChipletsBus) QueueEmpty() bool {
	return len(b.queuedHasherRequests) == 0
}

// BuildAuxiliaryColumn materializes the b_chip column (spec §4.1, §6):
// b_chip[0] = 1, b_chip[r+1] = b_chip[r] * product(responses at r) /
// product(requests at r), over traceLength rows. A cycle with no hint
// contributes a factor of 1 on both sides (no-op row).
func (b *ChipletsBus) BuildAuxiliaryColumn(alpha []*core.FieldElement, traceLength int) ([]*core.FieldElement, error) {
	if len(alpha) < 16 {
		return nil, newError(ErrChallengeVectorTooShort, "challenge vector must have length >= 16")
	}
	if traceLength <= 0 {
		return nil, newError(ErrMalformedLookup, "trace length must be positive")
	}

	column := make([]*core.FieldElement, traceLength)
	column[0] = b.field.One()

	for r := 0; r < traceLength-1; r++ {
		num := b.field.One()
		den := b.field.One()

		if h, ok := b.hints[uint32(r)]; ok {
			if h.resp != nil {
				reduced, err := Reduce(h.resp, alpha, b.field)
				if err != nil {
					return nil, err
				}
				num = reduced
			}
			if h.req != nil {
				reduced, err := Reduce(h.req, alpha, b.field)
				if err != nil {
					return nil, err
				}
				den = reduced
			}
		}

		invDen, err := den.Inv()
		if err != nil {
			return nil, wrapError(ErrUnknown, "request reduction is zero under this challenge vector", err)
		}
		column[r+1] = column[r].Mul(num).Mul(invDen)
	}

	return column, nil
}
