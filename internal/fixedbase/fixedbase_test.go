package fixedbase

import (
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func naiveG1(base *bn254.G1Jac, s *fr.Element) bn254.G1Jac {
	var bi big.Int
	s.BigInt(&bi)
	var p bn254.G1Jac
	p.ScalarMultiplication(base, &bi)
	return p
}

func naiveG2(base *bn254.G2Jac, s *fr.Element) bn254.G2Jac {
	var bi big.Int
	s.BigInt(&bi)
	var p bn254.G2Jac
	p.ScalarMultiplication(base, &bi)
	return p
}

// randomScalars draws scalars fitting in the given bit-width.
func randomScalars(rng *mrand.Rand, n, bits int) []fr.Element {
	res := make([]fr.Element, n)
	for i := range res {
		if bits >= fr.Bits {
			var buf [fr.Bytes]byte
			rng.Read(buf[:])
			res[i].SetBytes(buf[:])
			continue
		}
		mask := uint64(1)<<bits - 1
		res[i].SetUint64(rng.Uint64() & mask)
	}
	return res
}

func TestWindowSize(t *testing.T) {
	assert := require.New(t)
	assert.Equal(3, WindowSize(0))
	assert.Equal(3, WindowSize(1))
	assert.Equal(3, WindowSize(31))
	assert.Equal(4, WindowSize(32))
	assert.Equal(7, WindowSize(1000))
}

func TestMulBatchG1MatchesNaive(t *testing.T) {
	assert := require.New(t)
	rng := mrand.New(mrand.NewSource(1))

	base, _, _, _ := bn254.Generators()

	for _, n := range []int{0, 1, 17, 1000} {
		for _, bits := range []int{8, 32, fr.Bits} {
			scalars := randomScalars(rng, n, bits)
			table := NewTableG1(bits, WindowSize(n), &base)
			got := table.MulBatch(scalars)
			assert.Len(got, n)
			for i := range got {
				want := naiveG1(&base, &scalars[i])
				assert.True(got[i].Equal(&want), "batch size %d, %d bits, index %d", n, bits, i)
			}
		}
	}
}

func TestMulBatchG2MatchesNaive(t *testing.T) {
	assert := require.New(t)
	rng := mrand.New(mrand.NewSource(2))

	_, base, _, _ := bn254.Generators()

	for _, n := range []int{0, 1, 17} {
		for _, bits := range []int{16, fr.Bits} {
			scalars := randomScalars(rng, n, bits)
			table := NewTableG2(bits, WindowSize(n), &base)
			got := table.MulBatch(scalars)
			assert.Len(got, n)
			for i := range got {
				want := naiveG2(&base, &scalars[i])
				assert.True(got[i].Equal(&want), "batch size %d, %d bits, index %d", n, bits, i)
			}
		}
	}
}

func TestMulZeroScalar(t *testing.T) {
	assert := require.New(t)

	base, _, _, _ := bn254.Generators()
	table := NewTableG1(fr.Bits, 4, &base)

	var zero fr.Element
	got := table.Mul(&zero)
	want := naiveG1(&base, &zero)
	assert.True(got.Equal(&want))
}

func TestMulProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	base, _, _, _ := bn254.Generators()
	// a non-generator base, window chosen as for a large batch
	var s fr.Element
	s.SetUint64(0xdeadbeef)
	shifted := naiveG1(&base, &s)
	table := NewTableG1(fr.Bits, WindowSize(1000), &shifted)

	properties := gopter.NewProperties(parameters)
	properties.Property("table.Mul(s) == s·base", prop.ForAll(
		func(a uint64) bool {
			var e fr.Element
			e.SetUint64(a)
			got := table.Mul(&e)
			want := naiveG1(&shifted, &e)
			return got.Equal(&want)
		},
		gen.UInt64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
