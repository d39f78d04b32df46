// Package fixedbase implements windowed fixed-base multi-scalar
// multiplication: a lookup table over multiples of a single base is built
// once, then amortized over a batch of scalars.
//
// The table holds ceil(bits/w) levels; level l stores the multiples
// 0..2^w-1 of 2^(l·w)·base. A scalar is split into w-bit digits and its
// multiple is the sum of one table entry per level, so evaluation needs no
// doublings. Batches are evaluated with a fork-join fan-out over disjoint
// index ranges; the output is identical to the sequential order.
package fixedbase

import (
	"math"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/sragss/gm17/utils/parallel"
)

// WindowSize returns the window width to use for a batch of numScalars
// multiplications. Wider windows amortize better as the batch grows.
func WindowSize(numScalars int) int {
	if numScalars < 32 {
		return 3
	}
	return int(math.Ceil(math.Log(float64(numScalars))))
}

// digits splits s into w-bit little-endian digits, scalarBits in total.
// Scalars must be smaller than 2^scalarBits; higher bits are ignored.
func digits(s *fr.Element, scalarBits, window int) []uint64 {
	var bi big.Int
	s.BigInt(&bi)

	outerc := (scalarBits + window - 1) / window
	out := make([]uint64, outerc)
	for l := 0; l < outerc; l++ {
		var d uint64
		for b := 0; b < window; b++ {
			pos := l*window + b
			if pos >= scalarBits {
				break
			}
			d |= uint64(bi.Bit(pos)) << b
		}
		out[l] = d
	}
	return out
}

// TableG1 is a read-only window table over multiples of a G1 base.
type TableG1 struct {
	scalarBits int
	window     int
	levels     [][]bn254.G1Jac
}

// NewTableG1 precomputes the window table for base. scalarBits is the usable
// scalar bit-width, normally fr.Bits.
func NewTableG1(scalarBits, window int, base *bn254.G1Jac) *TableG1 {
	outerc := (scalarBits + window - 1) / window
	inWindow := 1 << window

	// 2^(l·w)·base for each level
	shifted := make([]bn254.G1Jac, outerc)
	acc := *base
	for l := 0; l < outerc; l++ {
		shifted[l] = acc
		for b := 0; b < window; b++ {
			acc.DoubleAssign()
		}
	}

	t := &TableG1{scalarBits: scalarBits, window: window, levels: make([][]bn254.G1Jac, outerc)}
	parallel.Execute(outerc, func(start, end int) {
		for l := start; l < end; l++ {
			row := make([]bn254.G1Jac, inWindow)
			// row[0] stays at infinity
			for i := 1; i < inWindow; i++ {
				row[i].Set(&row[i-1])
				row[i].AddAssign(&shifted[l])
			}
			t.levels[l] = row
		}
	})
	return t
}

// Mul returns s·base.
func (t *TableG1) Mul(s *fr.Element) bn254.G1Jac {
	var res bn254.G1Jac
	for l, d := range digits(s, t.scalarBits, t.window) {
		if d != 0 {
			res.AddAssign(&t.levels[l][d])
		}
	}
	return res
}

// MulBatch returns s·base for every scalar of the batch, in order.
func (t *TableG1) MulBatch(scalars []fr.Element) []bn254.G1Jac {
	res := make([]bn254.G1Jac, len(scalars))
	parallel.Execute(len(scalars), func(start, end int) {
		for i := start; i < end; i++ {
			res[i] = t.Mul(&scalars[i])
		}
	})
	return res
}

// TableG2 is the G2 counterpart of TableG1.
type TableG2 struct {
	scalarBits int
	window     int
	levels     [][]bn254.G2Jac
}

// NewTableG2 precomputes the window table for base.
func NewTableG2(scalarBits, window int, base *bn254.G2Jac) *TableG2 {
	outerc := (scalarBits + window - 1) / window
	inWindow := 1 << window

	shifted := make([]bn254.G2Jac, outerc)
	acc := *base
	for l := 0; l < outerc; l++ {
		shifted[l] = acc
		for b := 0; b < window; b++ {
			acc.DoubleAssign()
		}
	}

	t := &TableG2{scalarBits: scalarBits, window: window, levels: make([][]bn254.G2Jac, outerc)}
	parallel.Execute(outerc, func(start, end int) {
		for l := start; l < end; l++ {
			row := make([]bn254.G2Jac, inWindow)
			for i := 1; i < inWindow; i++ {
				row[i].Set(&row[i-1])
				row[i].AddAssign(&shifted[l])
			}
			t.levels[l] = row
		}
	})
	return t
}

// Mul returns s·base.
func (t *TableG2) Mul(s *fr.Element) bn254.G2Jac {
	var res bn254.G2Jac
	for l, d := range digits(s, t.scalarBits, t.window) {
		if d != 0 {
			res.AddAssign(&t.levels[l][d])
		}
	}
	return res
}

// MulBatch returns s·base for every scalar of the batch, in order.
func (t *TableG2) MulBatch(scalars []fr.Element) []bn254.G2Jac {
	res := make([]bn254.G2Jac, len(scalars))
	parallel.Execute(len(scalars), func(start, end int) {
		for i := start; i < end; i++ {
			res[i] = t.Mul(&scalars[i])
		}
	})
	return res
}

// NormalizeG2 converts a batch of G2 points to affine form, fanning the
// per-point inversions out across CPUs. gnark-crypto only ships a batch
// Jacobian-to-affine conversion for G1.
func NormalizeG2(points []bn254.G2Jac) []bn254.G2Affine {
	res := make([]bn254.G2Affine, len(points))
	parallel.Execute(len(points), func(start, end int) {
		for i := start; i < end; i++ {
			res[i].FromJacobian(&points[i])
		}
	})
	return res
}
