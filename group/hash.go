package group

import (
	"golang.org/x/crypto/blake2b"
)

// SoundnessBits is the reference soundness level (192 bits), matching the
// challenge width gf192.Width*8 and spec.md's "typically 24 bytes".
const SoundnessBits = 192

// SoundnessBytes is SoundnessBits/8.
const SoundnessBytes = SoundnessBits / 8

// Hash computes the Fiat-Shamir digest of the concatenated inputs and
// truncates it to SoundnessBytes, keeping the high-order bytes (spec.md
// §6). Blake2b-256 from golang.org/x/crypto is used as the underlying
// digest, wrapped behind this one-function facade.
func Hash(parts ...[]byte) [SoundnessBytes]byte {
	full := blake2b.Sum256(concat(parts))
	var out [SoundnessBytes]byte
	copy(out[:], full[:SoundnessBytes])
	return out
}

func concat(parts [][]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
