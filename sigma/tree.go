// Package sigma implements the sigma-protocol boolean tree: the proposition
// model (component C), its proof serializer/parser (E/F), the prover
// composition (G), and the verifier (H). See SPEC_FULL.md for the package
// layout rationale.
package sigma

import (
	"errors"

	"github.com/utxoproofs/sigmacore/group"
)

// Errors surfaced to callers (spec.md §6), checked with errors.Is.
var (
	ErrMalformedProof     = errors.New("sigma: malformed proof")
	ErrInvalidSignature   = errors.New("sigma: invalid signature")
	ErrInvalidProposition = errors.New("sigma: invalid proposition")
	ErrProverMissingSecret = errors.New("sigma: prover has no secret for a required leaf")
)

// maxChildren bounds COR/CTHRESHOLD child counts; spec.md §9 mandates an
// explicit InvalidProposition rather than silent truncation once a
// proposition would need to address more children than a single byte can
// index (matching box's token-count convention, §4.D).
const maxChildren = 255

// SigmaBoolean is the closed sum type of sigma propositions: a leaf
// statement or one of the three connectives. It is a closed interface
// (unexported marker method) rather than a tagged enum because, unlike
// the teacher's ProofType, these variants carry recursive structure.
type SigmaBoolean interface {
	isSigmaBoolean()
}

// Leaf is the closed sum type of leaf statements.
type Leaf interface {
	SigmaBoolean
	isLeaf()
}

// ProveDlog is the statement "I know w with g^w = h".
type ProveDlog struct {
	H group.Point
}

func (ProveDlog) isSigmaBoolean() {}
func (ProveDlog) isLeaf()         {}

// ProveDHTuple is the statement "I know w with u = g^w and v = h^w".
type ProveDHTuple struct {
	G, H, U, V group.Point
}

func (ProveDHTuple) isSigmaBoolean() {}
func (ProveDHTuple) isLeaf()         {}

// CAND is a conjunction of at least two children: the prover must prove
// every one.
type CAND struct {
	Children []SigmaBoolean
}

func (CAND) isSigmaBoolean() {}

// NewCAND builds a CAND, enforcing the >= 2 children invariant.
func NewCAND(children ...SigmaBoolean) (CAND, error) {
	if len(children) < 2 {
		return CAND{}, ErrInvalidProposition
	}
	return CAND{Children: append([]SigmaBoolean(nil), children...)}, nil
}

// COR is a disjunction of at least two children: the prover must prove at
// least one.
type COR struct {
	Children []SigmaBoolean
}

func (COR) isSigmaBoolean() {}

// NewCOR builds a COR, enforcing the >= 2 children invariant and the
// maxChildren cap (spec.md §9 Open Question: explicit rejection, no
// silent truncation).
func NewCOR(children ...SigmaBoolean) (COR, error) {
	if len(children) < 2 || len(children) > maxChildren {
		return COR{}, ErrInvalidProposition
	}
	return COR{Children: append([]SigmaBoolean(nil), children...)}, nil
}

// CTHRESHOLD is a k-of-n composition: the prover must prove at least k of
// the n children.
type CTHRESHOLD struct {
	K        uint8
	Children []SigmaBoolean
}

func (CTHRESHOLD) isSigmaBoolean() {}

// NewCThreshold builds a CTHRESHOLD, enforcing 1 <= k <= len(children) <= 255.
func NewCThreshold(k uint8, children ...SigmaBoolean) (CTHRESHOLD, error) {
	if k < 1 || int(k) > len(children) || len(children) > maxChildren {
		return CTHRESHOLD{}, ErrInvalidProposition
	}
	return CTHRESHOLD{K: k, Children: append([]SigmaBoolean(nil), children...)}, nil
}
