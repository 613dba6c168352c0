package sigma

import (
	"bytes"

	"github.com/utxoproofs/sigmacore/group"
)

// Verify is VerifyWithObserver with a NoopObserver.
func Verify(prop SigmaBoolean, propBytes, message, proof []byte) error {
	return VerifyWithObserver(prop, propBytes, message, proof, NoopObserver{})
}

// VerifyWithObserver parses proof against prop and checks that
// recomputing the root challenge from every leaf commitment, the
// proposition bytes, and the message reproduces the challenge actually
// carried by the proof (spec.md §4.H), notifying obs of every node in prop
// along the way (spec.md §9's cost-accounting hook). It returns nil on
// success, ErrMalformedProof if proof could not be parsed, and
// ErrInvalidSignature on any challenge mismatch (including an empty proof,
// which never verifies).
func VerifyWithObserver(prop SigmaBoolean, propBytes, message, proof []byte, obs Observer) error {
	tree, err := ParseWithObserver(prop, proof, obs)
	if err != nil {
		return err
	}
	if _, ok := tree.(NoProofType); ok {
		return ErrInvalidSignature
	}
	e0 := group.Hash(FiatShamirInput(leafCommitments(tree), propBytes, message))
	root := tree.challenge()
	if !bytes.Equal(e0[:], root[:]) {
		parseLog.Debug("challenge mismatch", "recomputed", e0, "proof", root)
		return ErrInvalidSignature
	}
	return nil
}
