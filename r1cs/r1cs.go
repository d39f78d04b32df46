// Package r1cs provides a minimal rank-1 constraint system builder.
//
// A circuit populates a System through its Define method; the setup
// generator then consumes the finalized snapshot (variable counts and
// constraints). This is not a circuit compiler: linear combinations are
// written out explicitly by the caller.
package r1cs

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Visibility tags a variable as the constant wire, a public input or a
// secret (witness) variable.
type Visibility uint8

const (
	Constant Visibility = iota
	Public
	Secret
)

// Variable is an opaque handle on a wire of the constraint system.
type Variable struct {
	visibility Visibility
	index      int
}

// Visibility returns the variable's visibility.
func (v Variable) Visibility() Visibility {
	return v.visibility
}

// Term is a coefficient times a variable.
type Term struct {
	Coeff    fr.Element
	Variable Variable
}

// LinearCombination is a sum of terms.
type LinearCombination []Term

// R1C is a constraint L * R = O.
type R1C struct {
	L, R, O LinearCombination
}

// System is a mutable R1CS handle. Once a circuit's Define returned, the
// system is treated as a read-only snapshot by the generator; it must not
// be mutated afterwards.
type System struct {
	nbPublic    int
	nbSecret    int
	constraints []R1C
}

// NewSystem returns an empty constraint system.
func NewSystem() *System {
	return &System{}
}

// One returns the constant wire, fixed to 1.
func (s *System) One() Variable {
	return Variable{visibility: Constant}
}

// PublicVariable allocates a new public input.
func (s *System) PublicVariable() Variable {
	v := Variable{visibility: Public, index: s.nbPublic}
	s.nbPublic++
	return v
}

// SecretVariable allocates a new witness variable.
func (s *System) SecretVariable() Variable {
	v := Variable{visibility: Secret, index: s.nbSecret}
	s.nbSecret++
	return v
}

// AddConstraint records the constraint l * r = o.
func (s *System) AddConstraint(l, r, o LinearCombination) {
	s.constraints = append(s.constraints, R1C{L: l, R: r, O: o})
}

// NbPublicVariables returns the number of public inputs, the constant wire
// excluded.
func (s *System) NbPublicVariables() int {
	return s.nbPublic
}

// NbSecretVariables returns the number of witness variables.
func (s *System) NbSecretVariables() int {
	return s.nbSecret
}

// NbConstraints returns the number of constraints.
func (s *System) NbConstraints() int {
	return len(s.constraints)
}

// NbWires returns the total wire count; the constant wire counts for one.
func (s *System) NbWires() int {
	return 1 + s.nbPublic + s.nbSecret
}

// Constraints returns the recorded constraints. The returned slice is owned
// by the system; callers must not modify it.
func (s *System) Constraints() []R1C {
	return s.constraints
}

// WireIndex maps a variable to its global wire index: the constant wire is
// 0, public inputs follow, then witness variables.
func (s *System) WireIndex(v Variable) int {
	switch v.visibility {
	case Constant:
		return 0
	case Public:
		return 1 + v.index
	default:
		return 1 + s.nbPublic + v.index
	}
}
