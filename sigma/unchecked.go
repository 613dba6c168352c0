package sigma

import (
	"github.com/utxoproofs/sigmacore/gf192"
	"github.com/utxoproofs/sigmacore/group"
)

// UncheckedTree is a parsed or freshly-proved proof tree: every challenge
// and response is already bound to concrete bytes, as opposed to
// SigmaBoolean which only describes the proposition being proved.
type UncheckedTree interface {
	isUncheckedTree()
	// challenge returns the node's challenge. Every variant except
	// NoProofType carries one.
	challenge() [group.SoundnessBytes]byte
}

// NoProofType is the sentinel result of an empty proof byte slice.
type NoProofType struct{}

// NoProof is the single NoProofType value.
var NoProof = NoProofType{}

func (NoProofType) isUncheckedTree() {}
func (NoProofType) challenge() [group.SoundnessBytes]byte {
	return [group.SoundnessBytes]byte{}
}

// UncheckedSchnorr is a completed ProveDlog leaf proof.
type UncheckedSchnorr struct {
	Proposition ProveDlog
	Challenge_  [group.SoundnessBytes]byte
	Response    group.Scalar
	Commitment  group.Point
}

func (UncheckedSchnorr) isUncheckedTree() {}
func (u UncheckedSchnorr) challenge() [group.SoundnessBytes]byte { return u.Challenge_ }

// UncheckedDHTuple is a completed ProveDHTuple leaf proof.
type UncheckedDHTuple struct {
	Proposition  ProveDHTuple
	Challenge_   [group.SoundnessBytes]byte
	Response     group.Scalar
	CommitmentA  group.Point
	CommitmentB  group.Point
}

func (UncheckedDHTuple) isUncheckedTree() {}
func (u UncheckedDHTuple) challenge() [group.SoundnessBytes]byte { return u.Challenge_ }

// UncheckedCAnd is a completed CAND proof: every child carries the same
// challenge as the parent.
type UncheckedCAnd struct {
	Children   []UncheckedTree
	Challenge_ [group.SoundnessBytes]byte
}

func (UncheckedCAnd) isUncheckedTree() {}
func (u UncheckedCAnd) challenge() [group.SoundnessBytes]byte { return u.Challenge_ }

// UncheckedCOr is a completed COR proof: children 0..n-2 carry independent
// challenges; child n-1's challenge is the XOR of the parent with all the
// others (never stored redundantly on the wire, but always present here).
type UncheckedCOr struct {
	Children   []UncheckedTree
	Challenge_ [group.SoundnessBytes]byte
}

func (UncheckedCOr) isUncheckedTree() {}
func (u UncheckedCOr) challenge() [group.SoundnessBytes]byte { return u.Challenge_ }

// UncheckedCThreshold is a completed CTHRESHOLD proof: child i's challenge
// is Poly.Evaluate(parentChallenge, i+1).
type UncheckedCThreshold struct {
	K          uint8
	Children   []UncheckedTree
	Challenge_ [group.SoundnessBytes]byte
	Poly       gf192.Poly
}

func (UncheckedCThreshold) isUncheckedTree() {}
func (u UncheckedCThreshold) challenge() [group.SoundnessBytes]byte { return u.Challenge_ }

// leafCommitments returns, in depth-first order, every leaf's commitment
// point(s): one for a Schnorr leaf, two for a DHTuple leaf.
func leafCommitments(t UncheckedTree) []group.Point {
	switch n := t.(type) {
	case UncheckedSchnorr:
		return []group.Point{n.Commitment}
	case UncheckedDHTuple:
		return []group.Point{n.CommitmentA, n.CommitmentB}
	case UncheckedCAnd:
		return childCommitments(n.Children)
	case UncheckedCOr:
		return childCommitments(n.Children)
	case UncheckedCThreshold:
		return childCommitments(n.Children)
	default:
		return nil
	}
}

func childCommitments(children []UncheckedTree) []group.Point {
	var out []group.Point
	for _, c := range children {
		out = append(out, leafCommitments(c)...)
	}
	return out
}

func xorChallenge(a, b [group.SoundnessBytes]byte) [group.SoundnessBytes]byte {
	var out [group.SoundnessBytes]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}
