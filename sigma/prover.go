package sigma

import (
	"github.com/utxoproofs/sigmacore/gf192"
	"github.com/utxoproofs/sigmacore/group"
)

// markedNode is the result of deciding, for one call to Prove, which
// nodes of a proposition are "real" (proved from a known secret) and
// which are "simulated" (proved from a freely chosen challenge/response
// pair, per the standard sigma-protocol OR-composition trick).
type markedNode struct {
	prop     SigmaBoolean
	real     bool
	children []*markedNode
	chosen   int   // COR only, when real: index of the real child
	realIdx  []int // CTHRESHOLD only, when real: indices of the k real children
}

// canRealize reports whether prop could be proved real given the secrets
// in hints, without yet committing to a particular choice of children for
// OR/THRESHOLD nodes.
func canRealize(prop SigmaBoolean, hints *Hints) bool {
	switch p := prop.(type) {
	case ProveDlog:
		return hints.hasDlogSecret(p)
	case ProveDHTuple:
		return hints.hasDHTupleSecret(p)
	case CAND:
		for _, c := range p.Children {
			if !canRealize(c, hints) {
				return false
			}
		}
		return true
	case COR:
		for _, c := range p.Children {
			if canRealize(c, hints) {
				return true
			}
		}
		return false
	case CTHRESHOLD:
		count := 0
		for _, c := range p.Children {
			if canRealize(c, hints) {
				count++
			}
		}
		return count >= int(p.K)
	default:
		return false
	}
}

// markTree marks every node of prop real or simulated, consistent with
// real meaning "the prover must produce a real proof rooted here" (spec.md
// §4.G step 1): AND is real iff every child is real; OR is real iff
// exactly one (arbitrarily chosen, among those that canRealize) child is
// real and the rest are fixed simulated; THRESHOLD is real iff exactly k
// (again arbitrarily chosen among those that canRealize) children are
// real.
func markTree(prop SigmaBoolean, real bool, hints *Hints) (*markedNode, error) {
	switch p := prop.(type) {
	case ProveDlog:
		if real && !hints.hasDlogSecret(p) {
			return nil, ErrProverMissingSecret
		}
		return &markedNode{prop: p, real: real}, nil

	case ProveDHTuple:
		if real && !hints.hasDHTupleSecret(p) {
			return nil, ErrProverMissingSecret
		}
		return &markedNode{prop: p, real: real}, nil

	case CAND:
		node := &markedNode{prop: p, real: real, children: make([]*markedNode, len(p.Children))}
		for i, c := range p.Children {
			cm, err := markTree(c, real, hints)
			if err != nil {
				return nil, err
			}
			node.children[i] = cm
		}
		return node, nil

	case COR:
		node := &markedNode{prop: p, real: real, children: make([]*markedNode, len(p.Children)), chosen: -1}
		if real {
			chosen := -1
			for i, c := range p.Children {
				if canRealize(c, hints) {
					chosen = i
					break
				}
			}
			if chosen == -1 {
				return nil, ErrProverMissingSecret
			}
			node.chosen = chosen
			for i, c := range p.Children {
				cm, err := markTree(c, i == chosen, hints)
				if err != nil {
					return nil, err
				}
				node.children[i] = cm
			}
		} else {
			for i, c := range p.Children {
				cm, err := markTree(c, false, hints)
				if err != nil {
					return nil, err
				}
				node.children[i] = cm
			}
		}
		return node, nil

	case CTHRESHOLD:
		node := &markedNode{prop: p, real: real, children: make([]*markedNode, len(p.Children))}
		if real {
			var realIdx []int
			for i, c := range p.Children {
				if len(realIdx) < int(p.K) && canRealize(c, hints) {
					realIdx = append(realIdx, i)
				}
			}
			if len(realIdx) < int(p.K) {
				return nil, ErrProverMissingSecret
			}
			node.realIdx = realIdx
			realSet := make(map[int]bool, len(realIdx))
			for _, idx := range realIdx {
				realSet[idx] = true
			}
			for i, c := range p.Children {
				cm, err := markTree(c, realSet[i], hints)
				if err != nil {
					return nil, err
				}
				node.children[i] = cm
			}
		} else {
			for i, c := range p.Children {
				cm, err := markTree(c, false, hints)
				if err != nil {
					return nil, err
				}
				node.children[i] = cm
			}
		}
		return node, nil

	default:
		return nil, ErrInvalidProposition
	}
}

// pnode is the intermediate, half-built proof tree produced by the commit
// phase (spec.md §4.G steps 2-3): every leaf's commitment is already
// fixed, but real nodes are still missing their final challenge and
// response, which only the root challenge (computed from all commitments)
// can supply.
type pnode struct {
	marked *markedNode

	// Leaf state.
	witness     group.Scalar // real leaf only
	randomness  group.Scalar // real leaf only
	simResponse group.Scalar // simulated leaf only

	// Any node's fixed challenge, if marked.real == false (already final)
	// or if this is a leaf the response was drawn against.
	simChallenge [group.SoundnessBytes]byte
	simPoly      gf192.Poly // simulated CTHRESHOLD only

	commitments []group.Point // this node's own leaf commitment(s); empty for connectives
	children    []*pnode
}

func (n *pnode) allLeafCommitments() []group.Point {
	if len(n.commitments) > 0 {
		return n.commitments
	}
	var out []group.Point
	for _, c := range n.children {
		out = append(out, c.allLeafCommitments()...)
	}
	return out
}

// commitPhase builds the commit-phase tree: real leaves commit with fresh
// randomness (no challenge yet); every simulated subtree is fully
// resolved immediately, rooted at a freshly sampled challenge.
func commitPhase(m *markedNode, hints *Hints) (*pnode, error) {
	if !m.real {
		e, err := group.RandomChallenge()
		if err != nil {
			return nil, err
		}
		return simulateFull(m, e)
	}

	switch p := m.prop.(type) {
	case ProveDlog:
		w, _ := hints.dlogSecret(p)
		r, err := group.RandomScalar()
		if err != nil {
			return nil, err
		}
		a := group.Exp(group.Generator(), r.BigInt())
		return &pnode{marked: m, witness: w, randomness: r, commitments: []group.Point{a}}, nil

	case ProveDHTuple:
		w, _ := hints.dhtSecret(p)
		r, err := group.RandomScalar()
		if err != nil {
			return nil, err
		}
		a := group.Exp(p.G, r.BigInt())
		b := group.Exp(p.H, r.BigInt())
		return &pnode{marked: m, witness: w, randomness: r, commitments: []group.Point{a, b}}, nil

	case CAND:
		children := make([]*pnode, len(m.children))
		for i, cm := range m.children {
			cn, err := commitPhase(cm, hints)
			if err != nil {
				return nil, err
			}
			children[i] = cn
		}
		return &pnode{marked: m, children: children}, nil

	case COR:
		children := make([]*pnode, len(m.children))
		for i, cm := range m.children {
			var cn *pnode
			var err error
			if i == m.chosen {
				cn, err = commitPhase(cm, hints)
			} else {
				var e [group.SoundnessBytes]byte
				e, err = group.RandomChallenge()
				if err == nil {
					cn, err = simulateFull(cm, e)
				}
			}
			if err != nil {
				return nil, err
			}
			children[i] = cn
		}
		return &pnode{marked: m, children: children}, nil

	case CTHRESHOLD:
		realSet := make(map[int]bool, len(m.realIdx))
		for _, idx := range m.realIdx {
			realSet[idx] = true
		}
		children := make([]*pnode, len(m.children))
		for i, cm := range m.children {
			var cn *pnode
			var err error
			if realSet[i] {
				cn, err = commitPhase(cm, hints)
			} else {
				var e [group.SoundnessBytes]byte
				e, err = group.RandomChallenge()
				if err == nil {
					cn, err = simulateFull(cm, e)
				}
			}
			if err != nil {
				return nil, err
			}
			children[i] = cn
		}
		return &pnode{marked: m, children: children}, nil

	default:
		return nil, ErrInvalidProposition
	}
}

// simulateFull fully resolves a simulated subtree given the challenge
// assigned to its root, distributing it downward with the same rules the
// parser/verifier use (spec.md §4.G step 2).
func simulateFull(m *markedNode, e [group.SoundnessBytes]byte) (*pnode, error) {
	switch p := m.prop.(type) {
	case ProveDlog:
		z, err := group.RandomScalar()
		if err != nil {
			return nil, err
		}
		a := reconstructDlogCommitment(p, e, z)
		return &pnode{marked: m, simChallenge: e, simResponse: z, commitments: []group.Point{a}}, nil

	case ProveDHTuple:
		z, err := group.RandomScalar()
		if err != nil {
			return nil, err
		}
		a, b := reconstructDHTupleCommitments(p, e, z)
		return &pnode{marked: m, simChallenge: e, simResponse: z, commitments: []group.Point{a, b}}, nil

	case CAND:
		children := make([]*pnode, len(m.children))
		for i, cm := range m.children {
			cn, err := simulateFull(cm, e)
			if err != nil {
				return nil, err
			}
			children[i] = cn
		}
		return &pnode{marked: m, simChallenge: e, children: children}, nil

	case COR:
		n := len(m.children)
		children := make([]*pnode, n)
		xor := e
		for i := 0; i < n-1; i++ {
			ce, err := group.RandomChallenge()
			if err != nil {
				return nil, err
			}
			cn, err := simulateFull(m.children[i], ce)
			if err != nil {
				return nil, err
			}
			children[i] = cn
			xor = xorChallenge(xor, ce)
		}
		last, err := simulateFull(m.children[n-1], xor)
		if err != nil {
			return nil, err
		}
		children[n-1] = last
		return &pnode{marked: m, simChallenge: e, children: children}, nil

	case CTHRESHOLD:
		n := len(m.children)
		k := int(p.K)
		constant, err := gf192.FromBytes(e[:])
		if err != nil {
			return nil, err
		}
		coeffs := make([]gf192.Element, n-k)
		for i := range coeffs {
			rb, err := group.RandomChallenge()
			if err != nil {
				return nil, err
			}
			el, err := gf192.FromBytes(rb[:])
			if err != nil {
				return nil, err
			}
			coeffs[i] = el
		}
		poly := gf192.Poly{Coeffs: coeffs}
		children := make([]*pnode, n)
		for i := 0; i < n; i++ {
			elem := poly.Evaluate(constant, uint8(i+1))
			var childE [group.SoundnessBytes]byte
			b := elem.Bytes()
			copy(childE[:], b[:])
			cn, err := simulateFull(m.children[i], childE)
			if err != nil {
				return nil, err
			}
			children[i] = cn
		}
		return &pnode{marked: m, simChallenge: e, simPoly: poly, children: children}, nil

	default:
		return nil, ErrInvalidProposition
	}
}

// finalizeSimulated converts an already-fully-resolved simulated pnode
// into its UncheckedTree form, with no further computation.
func finalizeSimulated(n *pnode) UncheckedTree {
	switch p := n.marked.prop.(type) {
	case ProveDlog:
		return UncheckedSchnorr{Proposition: p, Challenge_: n.simChallenge, Response: n.simResponse, Commitment: n.commitments[0]}
	case ProveDHTuple:
		return UncheckedDHTuple{Proposition: p, Challenge_: n.simChallenge, Response: n.simResponse, CommitmentA: n.commitments[0], CommitmentB: n.commitments[1]}
	case CAND:
		children := make([]UncheckedTree, len(n.children))
		for i, c := range n.children {
			children[i] = finalizeSimulated(c)
		}
		return UncheckedCAnd{Children: children, Challenge_: n.simChallenge}
	case COR:
		children := make([]UncheckedTree, len(n.children))
		for i, c := range n.children {
			children[i] = finalizeSimulated(c)
		}
		return UncheckedCOr{Children: children, Challenge_: n.simChallenge}
	case CTHRESHOLD:
		children := make([]UncheckedTree, len(n.children))
		for i, c := range n.children {
			children[i] = finalizeSimulated(c)
		}
		return UncheckedCThreshold{K: p.K, Children: children, Challenge_: n.simChallenge, Poly: n.simPoly}
	default:
		return nil
	}
}

// propagateReal walks the real path of the commit-phase tree top-down,
// fixing each real node's challenge and, at real leaves, computing the
// response (spec.md §4.G steps 4-5). Simulated children are finalized
// as-is, since their values were already fixed during the commit phase.
func propagateReal(n *pnode, e [group.SoundnessBytes]byte) (UncheckedTree, error) {
	switch p := n.marked.prop.(type) {
	case ProveDlog:
		z := n.randomness.Add(challengeToScalar(e).Mul(n.witness))
		return UncheckedSchnorr{Proposition: p, Challenge_: e, Response: z, Commitment: n.commitments[0]}, nil

	case ProveDHTuple:
		z := n.randomness.Add(challengeToScalar(e).Mul(n.witness))
		return UncheckedDHTuple{Proposition: p, Challenge_: e, Response: z, CommitmentA: n.commitments[0], CommitmentB: n.commitments[1]}, nil

	case CAND:
		children := make([]UncheckedTree, len(n.children))
		for i, c := range n.children {
			ct, err := propagateReal(c, e)
			if err != nil {
				return nil, err
			}
			children[i] = ct
		}
		return UncheckedCAnd{Children: children, Challenge_: e}, nil

	case COR:
		children := make([]UncheckedTree, len(n.children))
		xor := e
		for i, c := range n.children {
			if i == n.marked.chosen {
				continue
			}
			children[i] = finalizeSimulated(c)
			xor = xorChallenge(xor, c.simChallenge)
		}
		realChallenge := xor
		rc, err := propagateReal(n.children[n.marked.chosen], realChallenge)
		if err != nil {
			return nil, err
		}
		children[n.marked.chosen] = rc
		return UncheckedCOr{Children: children, Challenge_: e}, nil

	case CTHRESHOLD:
		realSet := make(map[int]bool, len(n.marked.realIdx))
		for _, idx := range n.marked.realIdx {
			realSet[idx] = true
		}
		constant, err := gf192.FromBytes(e[:])
		if err != nil {
			return nil, err
		}
		xs := []uint8{0}
		ys := []gf192.Element{constant}
		for i, c := range n.children {
			if !realSet[i] {
				elem, err := gf192.FromBytes(c.simChallenge[:])
				if err != nil {
					return nil, err
				}
				xs = append(xs, uint8(i+1))
				ys = append(ys, elem)
			}
		}
		poly, err := gf192.Interpolate(xs, ys)
		if err != nil {
			return nil, err
		}
		children := make([]UncheckedTree, len(n.children))
		for i, c := range n.children {
			if realSet[i] {
				elem := poly.Evaluate(constant, uint8(i+1))
				var childE [group.SoundnessBytes]byte
				b := elem.Bytes()
				copy(childE[:], b[:])
				ct, err := propagateReal(c, childE)
				if err != nil {
					return nil, err
				}
				children[i] = ct
			} else {
				children[i] = finalizeSimulated(c)
			}
		}
		return UncheckedCThreshold{K: p.K, Children: children, Challenge_: e, Poly: poly}, nil

	default:
		return nil, ErrInvalidProposition
	}
}

// FiatShamirInput builds the exact byte sequence hashed to derive the
// root challenge (spec.md §6): every leaf's encoded commitment(s), in
// depth-first order, followed by the opaque proposition bytes and the
// message being signed.
func FiatShamirInput(commitments []group.Point, propBytes, message []byte) []byte {
	out := make([]byte, 0, len(commitments)*group.EncodedLen+len(propBytes)+len(message))
	for _, c := range commitments {
		enc := group.EncodePoint(c)
		out = append(out, enc[:]...)
	}
	out = append(out, propBytes...)
	out = append(out, message...)
	return out
}

// Prove is ProveWithObserver with a NoopObserver.
func Prove(prop SigmaBoolean, hints *Hints, propBytes, message []byte) (UncheckedTree, error) {
	return ProveWithObserver(prop, hints, propBytes, message, NoopObserver{})
}

// ProveWithObserver builds a complete, non-interactive proof of prop using
// the witnesses in hints (spec.md §4.G), notifying obs of every node in
// prop along the way (spec.md §9's cost-accounting hook). propBytes is the
// opaque, already-serialized proposition blob the caller obtained from the
// script collaborator (see SPEC_FULL.md §4.D); message is the statement
// being signed. Returns ErrProverMissingSecret if hints does not cover
// enough of prop to realize it.
func ProveWithObserver(prop SigmaBoolean, hints *Hints, propBytes, message []byte, obs Observer) (UncheckedTree, error) {
	observe(obs, prop)
	if hints == nil {
		hints = NewHints()
	}
	if !canRealize(prop, hints) {
		return nil, ErrProverMissingSecret
	}
	marked, err := markTree(prop, true, hints)
	if err != nil {
		return nil, err
	}
	root, err := commitPhase(marked, hints)
	if err != nil {
		return nil, err
	}
	e0 := group.Hash(FiatShamirInput(root.allLeafCommitments(), propBytes, message))
	return propagateReal(root, e0)
}
