package sap

import (
	mrand "math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/stretchr/testify/require"

	"github.com/sragss/gm17/r1cs"
)

func randomFr(t *testing.T, rng *mrand.Rand) fr.Element {
	t.Helper()
	var buf [fr.Bytes]byte
	_, err := rng.Read(buf[:])
	require.NoError(t, err)
	var e fr.Element
	e.SetBytes(buf[:])
	return e
}

// squareSystem builds the 1-constraint system x·x = y with y public.
func squareSystem() *r1cs.System {
	s := r1cs.NewSystem()
	x := s.SecretVariable()
	y := s.PublicVariable()
	one := fr.One()
	s.AddConstraint(
		r1cs.LinearCombination{{Coeff: one, Variable: x}},
		r1cs.LinearCombination{{Coeff: one, Variable: x}},
		r1cs.LinearCombination{{Coeff: one, Variable: y}},
	)
	return s
}

func TestNewDomainRounding(t *testing.T) {
	assert := require.New(t)

	cases := []struct {
		nbConstraints, numInputs int
		wantCardinality          uint64
	}{
		{0, 1, 1},
		{1, 1, 4},  // 2·1 + 2·1 - 1 = 3
		{1, 2, 8},  // 2·1 + 2·2 - 1 = 5
		{3, 3, 16}, // 2·3 + 2·3 - 1 = 11
	}
	for _, c := range cases {
		domain, err := NewDomain(c.nbConstraints, c.numInputs)
		assert.NoError(err)
		assert.Equal(c.wantCardinality, domain.Cardinality)
	}
}

func TestNewDomainTooLarge(t *testing.T) {
	// required size 2^28+1 rounds to 2^29, past the field's two-adicity
	_, err := NewDomain(1<<27, 1)
	require.ErrorIs(t, err, ErrPolynomialDegreeTooLarge)
}

func TestEvaluateVanishing(t *testing.T) {
	assert := require.New(t)
	rng := mrand.New(mrand.NewSource(11))

	for _, size := range []uint64{1, 2, 7} {
		domain := fft.NewDomain(size)

		// zero on every domain element
		w := fr.One()
		for i := uint64(0); i < domain.Cardinality; i++ {
			z := EvaluateVanishing(domain, &w)
			assert.True(z.IsZero(), "size %d, element %d", size, i)
			w.Mul(&w, &domain.Generator)
		}

		// nonzero off the domain, overwhelmingly
		tt := randomFr(t, rng)
		z := EvaluateVanishing(domain, &tt)
		assert.False(z.IsZero())
	}
}

func TestLagrangeCoefficients(t *testing.T) {
	assert := require.New(t)
	rng := mrand.New(mrand.NewSource(12))

	domain := fft.NewDomain(8)
	tt := randomFr(t, rng)
	u := lagrangeCoefficients(domain, &tt)
	assert.Len(u, 8)

	// partition of unity: Σ L_k(t) = 1
	var sum fr.Element
	for k := range u {
		sum.Add(&sum, &u[k])
	}
	one := fr.One()
	assert.True(sum.Equal(&one))

	// interpolation of the identity: Σ ω^k·L_k(t) = t
	var idt, tmp fr.Element
	w := fr.One()
	for k := range u {
		tmp.Mul(&u[k], &w)
		idt.Add(&idt, &tmp)
		w.Mul(&w, &domain.Generator)
	}
	assert.True(idt.Equal(&tt))
}

func TestInstanceMapSizing(t *testing.T) {
	assert := require.New(t)
	rng := mrand.New(mrand.NewSource(13))

	cs := squareSystem()
	numInputs := cs.NbPublicVariables() + 1
	domain, err := NewDomain(cs.NbConstraints(), numInputs)
	assert.NoError(err)

	tt := randomFr(t, rng)
	inst, err := InstanceMapWithEvaluation(cs, domain, &tt)
	assert.NoError(err)

	// 2·(numInputs-1) + nbSecret + nbConstraints = 2 + 1 + 1
	assert.Equal(4, inst.NumVariables)
	assert.Len(inst.A, 5)
	assert.Len(inst.C, 5)
	assert.Equal(8, inst.MRaw)

	zt := EvaluateVanishing(domain, &tt)
	assert.True(inst.Zt.Equal(&zt))

	// the public input and the constant wire must appear in A
	assert.False(inst.A[0].IsZero())
	assert.False(inst.A[1].IsZero())
}

func TestInstanceMapDeterministic(t *testing.T) {
	assert := require.New(t)
	rng := mrand.New(mrand.NewSource(14))

	cs := squareSystem()
	domain, err := NewDomain(cs.NbConstraints(), cs.NbPublicVariables()+1)
	assert.NoError(err)

	tt := randomFr(t, rng)
	a, err := InstanceMapWithEvaluation(cs, domain, &tt)
	assert.NoError(err)
	b, err := InstanceMapWithEvaluation(cs, domain, &tt)
	assert.NoError(err)

	assert.Equal(a.NumVariables, b.NumVariables)
	for i := range a.A {
		assert.True(a.A[i].Equal(&b.A[i]))
		assert.True(a.C[i].Equal(&b.C[i]))
	}
}
