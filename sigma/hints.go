package sigma

import "github.com/utxoproofs/sigmacore/group"

// Hints is the bag of prover-side secrets (spec.md §4.G). A minimal
// version of the hints catalogue: enough for single-prover composition,
// not the full interactive/distributed-signing hint set (no multi-party
// signing protocol is in scope here).
type Hints struct {
	dlogSecrets map[[group.EncodedLen]byte]group.Scalar
	dhtSecrets  map[[4 * group.EncodedLen]byte]group.Scalar
}

// NewHints returns an empty hints bag.
func NewHints() *Hints {
	return &Hints{
		dlogSecrets: make(map[[group.EncodedLen]byte]group.Scalar),
		dhtSecrets:  make(map[[4 * group.EncodedLen]byte]group.Scalar),
	}
}

// AddDlogSecret registers the discrete-log witness w for h = g^w.
func (h *Hints) AddDlogSecret(leaf ProveDlog, w group.Scalar) *Hints {
	h.dlogSecrets[group.EncodePoint(leaf.H)] = w
	return h
}

// AddDHTupleSecret registers the witness w for u = g^w, v = h^w.
func (h *Hints) AddDHTupleSecret(leaf ProveDHTuple, w group.Scalar) *Hints {
	h.dhtSecrets[dhtKey(leaf)] = w
	return h
}

func (h *Hints) hasDlogSecret(leaf ProveDlog) bool {
	_, ok := h.dlogSecrets[group.EncodePoint(leaf.H)]
	return ok
}

func (h *Hints) dlogSecret(leaf ProveDlog) (group.Scalar, bool) {
	w, ok := h.dlogSecrets[group.EncodePoint(leaf.H)]
	return w, ok
}

func (h *Hints) hasDHTupleSecret(leaf ProveDHTuple) bool {
	_, ok := h.dhtSecrets[dhtKey(leaf)]
	return ok
}

func (h *Hints) dhtSecret(leaf ProveDHTuple) (group.Scalar, bool) {
	w, ok := h.dhtSecrets[dhtKey(leaf)]
	return w, ok
}

func dhtKey(leaf ProveDHTuple) [4 * group.EncodedLen]byte {
	var out [4 * group.EncodedLen]byte
	g := group.EncodePoint(leaf.G)
	copy(out[0:], g[:])
	hh := group.EncodePoint(leaf.H)
	copy(out[group.EncodedLen:], hh[:])
	u := group.EncodePoint(leaf.U)
	copy(out[2*group.EncodedLen:], u[:])
	v := group.EncodePoint(leaf.V)
	copy(out[3*group.EncodedLen:], v[:])
	return out
}
