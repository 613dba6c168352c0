package sigma

import (
	"bytes"
	"math/big"

	"github.com/utxoproofs/sigmacore/gf192"
	"github.com/utxoproofs/sigmacore/group"
	"github.com/utxoproofs/sigmacore/log"
)

var parseLog = log.Default().Module("sigma")

// Parse is ParseWithObserver with a NoopObserver.
func Parse(prop SigmaBoolean, proof []byte) (UncheckedTree, error) {
	return ParseWithObserver(prop, proof, NoopObserver{})
}

// ParseWithObserver reads a proof byte slice against a proposition,
// reconstructing every commitment as it goes so the result can be hashed
// and compared by Verify (spec.md §4.F), and notifies obs of every node in
// prop along the way (spec.md §9's cost-accounting hook). An empty proof
// parses to NoProof. Parsing fails with ErrMalformedProof on truncated or
// trailing input, and with ErrInvalidProposition if prop itself violates a
// structural invariant (e.g. a CTHRESHOLD whose k/n falls outside range).
func ParseWithObserver(prop SigmaBoolean, proof []byte, obs Observer) (UncheckedTree, error) {
	observe(obs, prop)
	if len(proof) == 0 {
		return NoProof, nil
	}
	r := bytes.NewReader(proof)
	tree, err := parseNode(prop, r, nil)
	if err != nil {
		parseLog.Debug("proof parse failed", "err", err, "proofLen", len(proof))
		return nil, err
	}
	if r.Len() != 0 {
		parseLog.Debug("trailing bytes after proof", "remaining", r.Len())
		return nil, ErrMalformedProof
	}
	return tree, nil
}

func parseNode(prop SigmaBoolean, r *bytes.Reader, incoming *[group.SoundnessBytes]byte) (UncheckedTree, error) {
	var e [group.SoundnessBytes]byte
	if incoming != nil {
		e = *incoming
	} else if err := readFull(r, e[:]); err != nil {
		return nil, err
	}

	switch p := prop.(type) {
	case ProveDlog:
		respBytes := make([]byte, group.ScalarEncodedLen)
		if err := readFull(r, respBytes); err != nil {
			return nil, err
		}
		z := group.ScalarFromBytes(respBytes)
		a := reconstructDlogCommitment(p, e, z)
		return UncheckedSchnorr{Proposition: p, Challenge_: e, Response: z, Commitment: a}, nil

	case ProveDHTuple:
		respBytes := make([]byte, group.ScalarEncodedLen)
		if err := readFull(r, respBytes); err != nil {
			return nil, err
		}
		z := group.ScalarFromBytes(respBytes)
		a, b := reconstructDHTupleCommitments(p, e, z)
		return UncheckedDHTuple{Proposition: p, Challenge_: e, Response: z, CommitmentA: a, CommitmentB: b}, nil

	case CAND:
		if len(p.Children) < 2 {
			return nil, ErrInvalidProposition
		}
		children := make([]UncheckedTree, len(p.Children))
		for i, c := range p.Children {
			child, err := parseNode(c, r, &e)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return UncheckedCAnd{Children: children, Challenge_: e}, nil

	case COR:
		n := len(p.Children)
		if n < 2 || n > maxChildren {
			return nil, ErrInvalidProposition
		}
		children := make([]UncheckedTree, n)
		xor := e
		for i := 0; i < n-1; i++ {
			child, err := parseNode(p.Children[i], r, nil)
			if err != nil {
				return nil, err
			}
			children[i] = child
			xor = xorChallenge(xor, child.challenge())
		}
		last, err := parseNode(p.Children[n-1], r, &xor)
		if err != nil {
			return nil, err
		}
		children[n-1] = last
		return UncheckedCOr{Children: children, Challenge_: e}, nil

	case CTHRESHOLD:
		n := len(p.Children)
		k := int(p.K)
		if k < 1 || k > n || n > maxChildren {
			return nil, ErrInvalidProposition
		}
		polyBytes := make([]byte, (n-k)*gf192.Width)
		if err := readFull(r, polyBytes); err != nil {
			return nil, err
		}
		poly, err := gf192.PolyFromBytes(polyBytes)
		if err != nil {
			return nil, ErrMalformedProof
		}
		constant, err := gf192.FromBytes(e[:])
		if err != nil {
			return nil, ErrMalformedProof
		}
		children := make([]UncheckedTree, n)
		for i := 0; i < n; i++ {
			elem := poly.Evaluate(constant, uint8(i+1))
			var childE [group.SoundnessBytes]byte
			b := elem.Bytes()
			copy(childE[:], b[:])
			child, err := parseNode(p.Children[i], r, &childE)
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return UncheckedCThreshold{K: p.K, Children: children, Challenge_: e, Poly: poly}, nil

	default:
		return nil, ErrInvalidProposition
	}
}

// challengeToScalar interprets a challenge as a non-negative big-endian
// integer and reduces it modulo the group order, per spec.md §6.
func challengeToScalar(e [group.SoundnessBytes]byte) group.Scalar {
	return group.ScalarFromBigInt(new(big.Int).SetBytes(e[:]))
}

// reconstructDlogCommitment recovers the Schnorr commitment a = g^z * h^-e
// from a response and challenge, the inverse of the prover's commit step.
func reconstructDlogCommitment(leaf ProveDlog, e [group.SoundnessBytes]byte, z group.Scalar) group.Point {
	negE := challengeToScalar(e).Neg()
	gz := group.Exp(group.Generator(), z.BigInt())
	hNegE := group.Exp(leaf.H, negE.BigInt())
	return group.Mul(gz, hNegE)
}

// reconstructDHTupleCommitments recovers a = g^z*u^-e and b = h^z*v^-e.
func reconstructDHTupleCommitments(leaf ProveDHTuple, e [group.SoundnessBytes]byte, z group.Scalar) (group.Point, group.Point) {
	negE := challengeToScalar(e).Neg()
	a := group.Mul(group.Exp(leaf.G, z.BigInt()), group.Exp(leaf.U, negE.BigInt()))
	b := group.Mul(group.Exp(leaf.H, z.BigInt()), group.Exp(leaf.V, negE.BigInt()))
	return a, b
}
