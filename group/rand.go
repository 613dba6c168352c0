package group

import (
	"crypto/rand"
)

// RandomScalar draws a uniform scalar in [0, q) from the OS CSPRNG. This
// is the one place the facade may block briefly, on entropy availability;
// callers treat that as opaque per spec.md §5.
func RandomScalar() (Scalar, error) {
	n := Order()
	v, err := rand.Int(rand.Reader, n)
	if err != nil {
		return Scalar{}, err
	}
	return ScalarFromBigInt(v), nil
}

// RandomChallenge draws a uniform SoundnessBits-bit challenge.
func RandomChallenge() ([SoundnessBytes]byte, error) {
	var out [SoundnessBytes]byte
	if _, err := rand.Read(out[:]); err != nil {
		return out, err
	}
	return out, nil
}
