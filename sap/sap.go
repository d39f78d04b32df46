// Package sap reduces a rank-1 constraint system to a Square Arithmetic
// Program instance, evaluated at a point outside the evaluation domain.
//
// The reduction follows GM17 (https://eprint.iacr.org/2017/540): each R1CS
// constraint A*B = C yields the two square constraints
//
//	(A + B)² = 4C + w
//	(A - B)² = w
//
// with w a fresh variable, each public input x yields
//
//	(x + 1)² = 4x + y
//	(x - 1)² = y
//
// with y a fresh variable, and a final constraint 1² = 1 closes the system.
// Satisfying assignments of the R1CS and of the SAP are in bijection for the
// same public inputs.
package sap

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/sragss/gm17/r1cs"
)

// ErrPolynomialDegreeTooLarge is returned when no evaluation domain of
// sufficient size exists for the given constraint and input counts.
var ErrPolynomialDegreeTooLarge = errors.New("polynomial degree too large: no evaluation domain of sufficient size")

// maxDomainOrder is the two-adicity of the BN254 scalar field; no radix-2
// domain larger than 2^maxDomainOrder exists.
const maxDomainOrder = 28

// Instance is the result of the reduction, evaluated at a point t.
type Instance struct {
	// A and C are the dense coefficient vectors, indexed by SAP variable;
	// both have length NumVariables+1 (index 0 is the constant wire).
	A, C []fr.Element

	// Zt is the evaluation Z(t) of the domain's vanishing polynomial.
	Zt fr.Element

	// NumVariables is the SAP variable count, the constant wire excluded.
	NumVariables int

	// MRaw bounds the powers of t needed to commit to the quotient
	// polynomial; it equals the rounded domain cardinality.
	MRaw int
}

// DomainSize returns the number of SAP constraints the reduction of a system
// with the given counts produces. numInputs counts the constant wire.
func DomainSize(nbConstraints, numInputs int) int {
	return 2*nbConstraints + 2*numInputs - 1
}

// NewDomain builds the evaluation domain for a system with the given counts,
// rounding up to the next supported (power of two) size. numInputs counts the
// constant wire.
func NewDomain(nbConstraints, numInputs int) (*fft.Domain, error) {
	size := ecc.NextPowerOfTwo(uint64(DomainSize(nbConstraints, numInputs)))
	if bits.TrailingZeros64(size) > maxDomainOrder {
		return nil, ErrPolynomialDegreeTooLarge
	}
	return fft.NewDomain(size), nil
}

// EvaluateVanishing returns Z(t) = t^n - 1 where n is the domain cardinality.
// t is in the domain iff the result is zero.
func EvaluateVanishing(domain *fft.Domain, t *fr.Element) fr.Element {
	var zt, one fr.Element
	one.SetOne()
	zt.Exp(*t, new(big.Int).SetUint64(domain.Cardinality)).Sub(&zt, &one)
	return zt
}

// InstanceMapWithEvaluation reduces cs to a SAP instance evaluated at t.
// The domain must come from NewDomain for the same system, and t must lie
// outside the domain.
func InstanceMapWithEvaluation(cs *r1cs.System, domain *fft.Domain, t *fr.Element) (*Instance, error) {
	numInputs := cs.NbPublicVariables() + 1
	numAux := cs.NbSecretVariables()
	nbConstraints := cs.NbConstraints()

	if int(domain.Cardinality) < DomainSize(nbConstraints, numInputs) {
		return nil, ErrPolynomialDegreeTooLarge
	}

	res := &Instance{
		NumVariables: 2*(numInputs-1) + numAux + nbConstraints,
		MRaw:         int(domain.Cardinality),
		Zt:           EvaluateVanishing(domain, t),
	}
	res.A = make([]fr.Element, res.NumVariables+1)
	res.C = make([]fr.Element, res.NumVariables+1)

	// u[k] = L_k(t), the k-th Lagrange polynomial of the domain at t
	u := lagrangeCoefficients(domain, t)

	// fresh-variable offsets: w_j for constraint j, then y_i for input i
	extraVarOffset := numInputs + numAux
	extraVarOffset2 := numInputs + numAux + nbConstraints
	extraConstrOffset := 2 * nbConstraints

	accumulate := func(dst []fr.Element, lc r1cs.LinearCombination, scale *fr.Element) {
		var s fr.Element
		for _, term := range lc {
			idx := cs.WireIndex(term.Variable)
			s.Mul(&term.Coeff, scale)
			dst[idx].Add(&dst[idx], &s)
		}
	}

	var tmp, uAdd, uSub, four fr.Element
	four.SetUint64(4)
	for j, con := range cs.Constraints() {
		u2j := u[2*j]
		u2j1 := u[2*j+1]
		uAdd.Add(&u2j, &u2j1)
		uSub.Sub(&u2j, &u2j1)

		// (A+B)² = 4C + w ; (A-B)² = w
		accumulate(res.A, con.L, &uAdd)
		accumulate(res.A, con.R, &uSub)
		tmp.Mul(&u2j, &four)
		accumulate(res.C, con.O, &tmp)

		w := extraVarOffset + j
		res.C[w].Add(&res.C[w], &uAdd)
	}

	// (x_i+1)² = 4x_i + y_i ; (x_i-1)² = y_i
	for i := 1; i < numInputs; i++ {
		u0 := u[extraConstrOffset+2*(i-1)]
		u1 := u[extraConstrOffset+2*(i-1)+1]
		uAdd.Add(&u0, &u1)
		uSub.Sub(&u0, &u1)

		res.A[i].Add(&res.A[i], &uAdd)
		res.A[0].Add(&res.A[0], &uSub)
		tmp.Mul(&u0, &four)
		res.C[i].Add(&res.C[i], &tmp)

		y := extraVarOffset2 + (i - 1)
		res.C[y].Add(&res.C[y], &uAdd)
	}

	// 1² = 1
	uLast := u[extraConstrOffset+2*(numInputs-1)]
	res.A[0].Add(&res.A[0], &uLast)
	res.C[0].Add(&res.C[0], &uLast)

	return res, nil
}

// lagrangeCoefficients evaluates all Lagrange polynomials of the domain at t:
// L_k(t) = Z(t)·ω^k / (n·(t - ω^k)). t must not be a domain element.
func lagrangeCoefficients(domain *fft.Domain, t *fr.Element) []fr.Element {
	n := int(domain.Cardinality)

	denoms := make([]fr.Element, n)
	wk := fr.One()
	for k := 0; k < n; k++ {
		denoms[k].Sub(t, &wk)
		wk.Mul(&wk, &domain.Generator)
	}
	denoms = fr.BatchInvert(denoms)

	var ztOverN fr.Element
	zt := EvaluateVanishing(domain, t)
	ztOverN.Mul(&zt, &domain.CardinalityInv)

	u := make([]fr.Element, n)
	wk.SetOne()
	for k := 0; k < n; k++ {
		u[k].Mul(&ztOverN, &wk).Mul(&u[k], &denoms[k])
		wk.Mul(&wk, &domain.Generator)
	}
	return u
}
