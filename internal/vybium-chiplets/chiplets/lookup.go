package chiplets

import "github.com/vybium/vybium-chiplets/internal/vybium-chiplets/core"

// HasherLookup is one reducible descriptor of a hasher-chiplet interaction:
// a Start, Absorb, or Return boundary of a permutation or Merkle leg.
type HasherLookup struct {
	Label uint8
	State HasherState
	Addr  uint32
	Index *core.FieldElement
	Ctx   HasherContext
}

// BitwiseLookup is an opaque row contributed by the bitwise chiplet, an
// external collaborator of this core. Its layout mirrors the memory
// reduction's shape (ctx/addr plus two operands and a result) since the bus
// only requires that it reduce to a single field element under alpha.
type BitwiseLookup struct {
	Ctx    *core.FieldElement
	Addr   uint32
	Input1 *core.FieldElement
	Input2 *core.FieldElement
	Result *core.FieldElement
}

// MemoryLookup is an opaque row contributed by the memory chiplet. Its
// reduction formula is given in full by spec §6, because the bus contract
// needs it to stay bit-exact across implementations even though memory
// itself is out of scope here.
type MemoryLookup struct {
	Ctx      *core.FieldElement
	Addr     uint32
	Clk      uint32
	OldWord  [4]*core.FieldElement
	NewWord  [4]*core.FieldElement
}

// RowKind discriminates the closed ChipletsLookupRow variant. Kept as an
// explicit tag rather than an interface so the reduction function is a
// single exhaustive switch, never dynamic dispatch over an open set of
// implementations.
type RowKind int

const (
	KindHasher RowKind = iota
	KindHasherMulti
	KindBitwise
	KindMemory
)

// ChipletsLookupRow is the tagged variant of spec §3: exactly one of the
// fields matching Kind is populated.
type ChipletsLookupRow struct {
	Kind        RowKind
	Hasher      *HasherLookup
	HasherMulti []*HasherLookup
	Bitwise     *BitwiseLookup
	Memory      *MemoryLookup
}

// NewHasherRow wraps a single hasher lookup as a lookup row.
func NewHasherRow(lookup *HasherLookup) *ChipletsLookupRow {
	return &ChipletsLookupRow{Kind: KindHasher, Hasher: lookup}
}

// NewHasherMultiRow wraps two or four hasher lookups as one lookup row; the
// bus reduces it as the product of its members, since it models each
// sub-lookup as an independent element of the permuted multiset.
func NewHasherMultiRow(lookups []*HasherLookup) (*ChipletsLookupRow, error) {
	if len(lookups) != 2 && len(lookups) != 4 {
		return nil, newError(ErrMalformedLookup, "HasherMulti row must have length 2 or 4")
	}
	return &ChipletsLookupRow{Kind: KindHasherMulti, HasherMulti: lookups}, nil
}

func NewBitwiseRow(row *BitwiseLookup) *ChipletsLookupRow {
	return &ChipletsLookupRow{Kind: KindBitwise, Bitwise: row}
}

func NewMemoryRow(row *MemoryLookup) *ChipletsLookupRow {
	return &ChipletsLookupRow{Kind: KindMemory, Memory: row}
}

// Reduce maps a ChipletsLookupRow to a single field element under the
// challenge vector alpha (length >= 16), per spec §6. This is the function
// the bus treats every row as an opaque instance of.
func Reduce(row *ChipletsLookupRow, alpha []*core.FieldElement, field *core.Field) (*core.FieldElement, error) {
	if len(alpha) < 16 {
		return nil, newError(ErrChallengeVectorTooShort, "challenge vector must have length >= 16")
	}
	switch row.Kind {
	case KindHasher:
		return reduceHasher(row.Hasher, alpha, field)
	case KindHasherMulti:
		product := field.One()
		for _, l := range row.HasherMulti {
			r, err := reduceHasher(l, alpha, field)
			if err != nil {
				return nil, err
			}
			product = product.Mul(r)
		}
		return product, nil
	case KindBitwise:
		return reduceBitwise(row.Bitwise, alpha, field), nil
	case KindMemory:
		return reduceMemory(row.Memory, alpha, field), nil
	default:
		return nil, newError(ErrMalformedLookup, "unrecognized lookup row kind")
	}
}

// transitionLabel computes label + 16 (Start/first-cycle row, addr == 1 mod
// 8) or label + 32 (Return/Absorb/last-cycle row, addr == 0 mod 8).
func transitionLabel(label uint8, addr uint32) uint8 {
	if addr%8 == 1 {
		return label + firstCycleShift
	}
	return label + lastCycleShift
}

func reduceHasher(l *HasherLookup, alpha []*core.FieldElement, field *core.Field) (*core.FieldElement, error) {
	tlabel := transitionLabel(l.Label, l.Addr)

	acc := alpha[0]
	acc = acc.Add(alpha[1].Mul(field.NewElementFromInt64(int64(tlabel))))
	acc = acc.Add(alpha[2].Mul(field.NewElementFromUint64(uint64(l.Addr))))
	acc = acc.Add(alpha[3].Mul(l.Index))

	switch {
	case l.Ctx.Kind == CtxStart && l.Label == LinearHashLabel,
		l.Ctx.Kind == CtxReturn && l.Label == ReturnStateLabel:
		for i := 0; i < Width; i++ {
			acc = acc.Add(alpha[i+4].Mul(l.State[i]))
		}

	case l.Ctx.Kind == CtxAbsorb && l.Label == LinearHashLabel:
		preRate := l.State.Rate()
		postRate := l.Ctx.NextState.Rate()
		for i := 0; i < Rate; i++ {
			delta := postRate[i].Sub(preRate[i])
			acc = acc.Add(alpha[i+8].Mul(delta))
		}

	case l.Ctx.Kind == CtxReturn && l.Label == ReturnHashLabel:
		digest := l.State.Digest()
		for i := 0; i < DigestLen; i++ {
			acc = acc.Add(alpha[i+8].Mul(digest[i]))
		}

	case l.Ctx.Kind == CtxStart && (l.Label == MPVerifyLabel || l.Label == MRUpdateOldLabel || l.Label == MRUpdateNewLabel):
		rate := l.State.Rate()
		left := rate[0:4]
		right := rate[4:8]
		idxBit := (l.Index.Big().Uint64() >> 1) & 1
		for i := 0; i < 4; i++ {
			var term *core.FieldElement
			if idxBit == 0 {
				term = left[i]
			} else {
				term = right[i]
			}
			acc = acc.Add(alpha[i+8].Mul(term))
		}

	default:
		return nil, newError(ErrMalformedLookup, "no reduction branch matches this lookup's (label, context)")
	}

	return acc, nil
}

func reduceBitwise(l *BitwiseLookup, alpha []*core.FieldElement, field *core.Field) *core.FieldElement {
	acc := alpha[0]
	acc = acc.Add(alpha[1].Mul(field.NewElementFromInt64(int64(BitwiseLabel))))
	acc = acc.Add(alpha[2].Mul(l.Ctx))
	acc = acc.Add(alpha[3].Mul(field.NewElementFromUint64(uint64(l.Addr))))
	acc = acc.Add(alpha[4].Mul(l.Input1))
	acc = acc.Add(alpha[5].Mul(l.Input2))
	acc = acc.Add(alpha[6].Mul(l.Result))
	return acc
}

func reduceMemory(l *MemoryLookup, alpha []*core.FieldElement, field *core.Field) *core.FieldElement {
	acc := alpha[0]
	acc = acc.Add(alpha[1].Mul(field.NewElementFromInt64(int64(MemoryLabel))))
	acc = acc.Add(alpha[2].Mul(l.Ctx))
	acc = acc.Add(alpha[3].Mul(field.NewElementFromUint64(uint64(l.Addr))))
	acc = acc.Add(alpha[4].Mul(field.NewElementFromUint64(uint64(l.Clk))))
	for i := 0; i < 4; i++ {
		acc = acc.Add(alpha[i+5].Mul(l.OldWord[i]))
	}
	for i := 0; i < 4; i++ {
		acc = acc.Add(alpha[i+9].Mul(l.NewWord[i]))
	}
	return acc
}
