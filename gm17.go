// Package gm17 implements the circuit-specific setup of the Groth-Maller
// simulation-extractable zkSNARK (https://eprint.iacr.org/2017/540) over the
// BN254 curve.
//
// Setup reduces an R1CS circuit to a Square Arithmetic Program evaluated at
// a secret point, then derives the proving and verifying keys with batched
// fixed-base scalar multiplications. The trapdoor values ("toxic waste")
// exist only for the duration of the call; the package performs no secure
// erasure, discarding them is the caller's responsibility.
package gm17

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/sragss/gm17/r1cs"
)

// Circuit populates a constraint system with the R1CS form of a statement.
// Define returns an error if the circuit is malformed; the error aborts
// setup before any cryptographic work.
type Circuit interface {
	Define(cs *r1cs.System) error
}

// VerifyingKey holds the public parameters a verifier needs.
type VerifyingKey struct {
	// [1]₂, [α]₁, [β]₂, [γ]₁, [γ]₂
	H      bn254.G2Affine
	GAlpha bn254.G1Affine
	HBeta  bn254.G2Affine
	GGamma bn254.G1Affine
	HGamma bn254.G2Affine

	// Query has one entry per instance wire, the constant wire first.
	Query []bn254.G1Affine
}

// ProvingKey holds the public parameters a prover needs. The verifying key
// is embedded and shared.
type ProvingKey struct {
	VK VerifyingKey

	// per-variable queries; A and C2 span all SAP variables, C1 starts at
	// the first witness wire
	AQuery  []bn254.G1Affine
	BQuery  []bn254.G2Affine
	CQuery1 []bn254.G1Affine
	CQuery2 []bn254.G1Affine

	// [γZ(t)]₁, [γZ(t)]₂, [(α+β)γZ(t)]₁, [(γZ(t))²]₁
	GGammaZ   bn254.G1Affine
	HGammaZ   bn254.G2Affine
	GAbGammaZ bn254.G1Affine
	GGamma2Z2 bn254.G1Affine

	// GGamma2ZT[i] = [γ²Z(t)·tⁱ]₁; folds the quotient polynomial into a
	// proof without revealing it
	GGamma2ZT []bn254.G1Affine
}

// VerifyingKey returns the verifying key embedded in pk.
func (pk *ProvingKey) VerifyingKey() *VerifyingKey {
	return &pk.VK
}
