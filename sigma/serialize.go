package sigma

import (
	"bytes"
)

// Serialize encodes a completed proof tree into the compact consensus
// wire format (spec.md §4.E). An empty/NoProof tree serializes to nil.
//
// Layout, depth-first:
//   - the root's challenge (SoundnessBytes), always written once;
//   - then the body, recursively:
//   - Schnorr / DHTuple leaf: the scalar response (ScalarEncodedLen bytes);
//   - CAND: each child's body, in order (no further challenges written,
//     since every child shares the parent's challenge);
//   - COR: for children 0..n-2, the child's challenge followed by its
//     body; for child n-1, only its body (its challenge is always the
//     XOR of the parent with the others, so never written);
//   - CTHRESHOLD: the polynomial coefficients (gf192.Width bytes each,
//     ascending degree), then every child's body in order.
func Serialize(root UncheckedTree) []byte {
	if _, ok := root.(NoProofType); ok {
		return nil
	}
	var buf bytes.Buffer
	e := root.challenge()
	buf.Write(e[:])
	writeBody(&buf, root)
	return buf.Bytes()
}

func writeBody(buf *bytes.Buffer, node UncheckedTree) {
	switch n := node.(type) {
	case UncheckedSchnorr:
		r := n.Response.Bytes()
		buf.Write(r[:])
	case UncheckedDHTuple:
		r := n.Response.Bytes()
		buf.Write(r[:])
	case UncheckedCAnd:
		for _, c := range n.Children {
			writeBody(buf, c)
		}
	case UncheckedCOr:
		last := len(n.Children) - 1
		for i, c := range n.Children {
			if i < last {
				ch := c.challenge()
				buf.Write(ch[:])
			}
			writeBody(buf, c)
		}
	case UncheckedCThreshold:
		buf.Write(n.Poly.ToBytes())
		for _, c := range n.Children {
			writeBody(buf, c)
		}
	}
}

// readFull reads exactly len(dst) bytes from r, returning ErrMalformedProof
// on short input.
func readFull(r *bytes.Reader, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	n, err := r.Read(dst)
	if err != nil || n != len(dst) {
		return ErrMalformedProof
	}
	return nil
}
