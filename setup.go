package gm17

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/sragss/gm17/internal/fixedbase"
	"github.com/sragss/gm17/logger"
	"github.com/sragss/gm17/r1cs"
	"github.com/sragss/gm17/sap"
	"github.com/sragss/gm17/utils/parallel"
)

// ErrPolynomialDegreeTooLarge is returned when the circuit needs an
// evaluation domain larger than the curve supports.
var ErrPolynomialDegreeTooLarge = sap.ErrPolynomialDegreeTooLarge

// Trapdoor is the secret setup randomness. Leaking it breaks soundness; the
// caller must discard it once setup returned.
type Trapdoor struct {
	Alpha, Beta, Gamma fr.Element
	G                  bn254.G1Jac
	H                  bn254.G2Jac
}

// Option configures a Setup call.
type Option func(*setupConfig)

type setupConfig struct {
	rand io.Reader
}

// WithRandomSource overrides the source of randomness, crypto/rand.Reader by
// default. The source is consulted for the trapdoor draws (Setup only) and
// the evaluation-point draw.
func WithRandomSource(r io.Reader) Option {
	return func(c *setupConfig) { c.rand = r }
}

func newConfig(opts []Option) *setupConfig {
	cfg := &setupConfig{rand: rand.Reader}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Setup samples a fresh trapdoor (γ fixed to one) and generates the proving
// key for circuit. The verifying key is embedded in the result.
func Setup(circuit Circuit, opts ...Option) (*ProvingKey, error) {
	cfg := newConfig(opts)

	var tw Trapdoor
	var err error
	if tw.Alpha, err = randomFr(cfg.rand); err != nil {
		return nil, err
	}
	if tw.Beta, err = randomFr(cfg.rand); err != nil {
		return nil, err
	}
	tw.Gamma.SetOne()

	g1, g2, _, _ := bn254.Generators()
	var k fr.Element
	var kBig big.Int
	if k, err = randomFr(cfg.rand); err != nil {
		return nil, err
	}
	k.BigInt(&kBig)
	tw.G.ScalarMultiplication(&g1, &kBig)
	if k, err = randomFr(cfg.rand); err != nil {
		return nil, err
	}
	k.BigInt(&kBig)
	tw.H.ScalarMultiplication(&g2, &kBig)

	return SetupWithTrapdoor(circuit, tw, opts...)
}

// SetupWithTrapdoor generates the proving key for circuit from a caller
// supplied trapdoor, for ceremonies and reproducible setups. The random
// source only serves the evaluation-point draw; for fixed trapdoor and
// random source the resulting key is bit-for-bit deterministic.
func SetupWithTrapdoor(circuit Circuit, tw Trapdoor, opts ...Option) (*ProvingKey, error) {
	cfg := newConfig(opts)
	log := logger.Logger().With().Str("backend", "gm17").Str("curve", "bn254").Logger()
	start := time.Now()

	cs := r1cs.NewSystem()
	if err := circuit.Define(cs); err != nil {
		return nil, fmt.Errorf("constraint synthesis: %w", err)
	}

	numInputs := cs.NbPublicVariables() + 1
	nbConstraints := cs.NbConstraints()
	log.Debug().Int("nbConstraints", nbConstraints).Int("nbPublic", cs.NbPublicVariables()).Msg("circuit synthesized")

	domain, err := sap.NewDomain(nbConstraints, numInputs)
	if err != nil {
		return nil, err
	}

	t, err := sampleOutsideDomain(domain, cfg.rand)
	if err != nil {
		return nil, err
	}

	startReduction := time.Now()
	inst, err := sap.InstanceMapWithEvaluation(cs, domain, &t)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(startReduction)).Int("sapNumVariables", inst.NumVariables).Msg("R1CS to SAP reduction")

	pk := assemble(inst, &tw, &t, numInputs)
	log.Debug().Dur("took", time.Since(start)).Msg("setup done")
	return pk, nil
}

// assemble derives all key material from the SAP instance and the trapdoor.
func assemble(inst *sap.Instance, tw *Trapdoor, t *fr.Element, numInputs int) *ProvingKey {
	nv := inst.NumVariables

	// density of the A vector; only sizes the B-query window table
	density := bitset.New(uint(nv))
	for i := 0; i < nv; i++ {
		if !inst.A[i].IsZero() {
			density.Set(uint(i))
		}
	}
	nonZeroA := int(density.Count())

	scalarBits := fr.Bits

	gWindow := fixedbase.WindowSize(
		// verifier query
		numInputs +
			// A-query
			nonZeroA +
			// C-query 1
			(nv - (numInputs - 1)) +
			// C-query 2
			nv + 1 +
			// powers of t
			inst.MRaw + 1)
	gTable := fixedbase.NewTableG1(scalarBits, gWindow, &tw.G)

	// A-query: aᵢ·γ
	aScalars := make([]fr.Element, nv+1)
	parallel.Execute(nv+1, func(start, end int) {
		for i := start; i < end; i++ {
			aScalars[i].Mul(&inst.A[i], &tw.Gamma)
		}
	})
	aQuery := gTable.MulBatch(aScalars)

	// the derived exponents each land in several key fields; compute once
	var gammaZ, alphaBeta, abGammaZ, gamma2ZT, doubleGamma2Z, gammaZ2 fr.Element
	gammaZ.Mul(&inst.Zt, &tw.Gamma)
	alphaBeta.Add(&tw.Alpha, &tw.Beta)
	abGammaZ.Mul(&alphaBeta, &tw.Gamma).Mul(&abGammaZ, &inst.Zt)
	gamma2ZT.Mul(&gammaZ, &tw.Gamma)
	doubleGamma2Z.Square(&tw.Gamma).Mul(&doubleGamma2Z, &inst.Zt).Double(&doubleGamma2Z)
	gammaZ2.Square(&gammaZ)

	var bi big.Int
	mulG := func(s *fr.Element) bn254.G1Jac {
		var p bn254.G1Jac
		s.BigInt(&bi)
		p.ScalarMultiplication(&tw.G, &bi)
		return p
	}
	mulH := func(base *bn254.G2Jac, s *fr.Element) bn254.G2Jac {
		var p bn254.G2Jac
		s.BigInt(&bi)
		p.ScalarMultiplication(base, &bi)
		return p
	}

	gGamma := mulG(&tw.Gamma)
	gGammaZ := mulG(&gammaZ)
	hGamma := mulH(&tw.H, &tw.Gamma)
	hGammaZ := mulH(&hGamma, &inst.Zt)
	gAbGammaZ := mulG(&abGammaZ)
	gGamma2Z2 := mulG(&gammaZ2)
	gAlpha := mulG(&tw.Alpha)
	hBeta := mulH(&tw.H, &tw.Beta)

	// γ²Z(t)·tⁱ for i in 0..MRaw
	tPowers := make([]fr.Element, inst.MRaw+1)
	cur := gamma2ZT
	for i := range tPowers {
		tPowers[i] = cur
		cur.Mul(&cur, t)
	}
	gGamma2ZT := gTable.MulBatch(tPowers)

	// C-query part 1: cᵢ·γ + aᵢ·(α+β); the first numInputs entries form
	// the verifier query
	c1Scalars := make([]fr.Element, nv+1)
	parallel.Execute(nv+1, func(start, end int) {
		var u fr.Element
		for i := start; i < end; i++ {
			c1Scalars[i].Mul(&inst.C[i], &tw.Gamma)
			u.Mul(&inst.A[i], &alphaBeta)
			c1Scalars[i].Add(&c1Scalars[i], &u)
		}
	})
	c1 := gTable.MulBatch(c1Scalars)
	verifierQuery := c1[:numInputs]
	cQuery1 := c1[numInputs:]

	// C-query part 2: aᵢ·2γ²Z(t)
	c2Scalars := make([]fr.Element, nv+1)
	parallel.Execute(nv+1, func(start, end int) {
		for i := start; i < end; i++ {
			c2Scalars[i].Mul(&inst.A[i], &doubleGamma2Z)
		}
	})
	cQuery2 := gTable.MulBatch(c2Scalars)

	// B-query lives in G2, against the γ-scaled base
	hWindow := fixedbase.WindowSize(nonZeroA)
	hTable := fixedbase.NewTableG2(scalarBits, hWindow, &hGamma)
	bQuery := hTable.MulBatch(inst.A)

	pk := &ProvingKey{
		AQuery:    bn254.BatchJacobianToAffineG1(aQuery),
		BQuery:    fixedbase.NormalizeG2(bQuery),
		CQuery1:   bn254.BatchJacobianToAffineG1(cQuery1),
		CQuery2:   bn254.BatchJacobianToAffineG1(cQuery2),
		GGamma2ZT: bn254.BatchJacobianToAffineG1(gGamma2ZT),
	}
	pk.GGammaZ.FromJacobian(&gGammaZ)
	pk.HGammaZ.FromJacobian(&hGammaZ)
	pk.GAbGammaZ.FromJacobian(&gAbGammaZ)
	pk.GGamma2Z2.FromJacobian(&gGamma2Z2)

	pk.VK.H.FromJacobian(&tw.H)
	pk.VK.GAlpha.FromJacobian(&gAlpha)
	pk.VK.HBeta.FromJacobian(&hBeta)
	pk.VK.GGamma.FromJacobian(&gGamma)
	pk.VK.HGamma.FromJacobian(&hGamma)
	pk.VK.Query = bn254.BatchJacobianToAffineG1(verifierQuery)

	return pk
}

// sampleOutsideDomain draws field elements until one falls outside the
// domain's root set.
func sampleOutsideDomain(domain *fft.Domain, rand io.Reader) (fr.Element, error) {
	var t fr.Element
	for {
		var err error
		if t, err = randomFr(rand); err != nil {
			return t, err
		}
		if zt := sap.EvaluateVanishing(domain, &t); !zt.IsZero() {
			return t, nil
		}
	}
}

// randomFr draws a near-uniform field element from rand; the 16 surplus
// bytes keep the modular reduction bias negligible.
func randomFr(rand io.Reader) (fr.Element, error) {
	var buf [fr.Bytes + 16]byte
	var e fr.Element
	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return e, fmt.Errorf("sampling field element: %w", err)
	}
	e.SetBytes(buf[:])
	return e, nil
}
