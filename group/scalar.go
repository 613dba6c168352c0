package group

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Scalar is an integer modulo the group order q, encoded on the wire as
// Order() bytes, big-endian, zero-padded (spec.md §3).
type Scalar struct {
	v *big.Int
}

// ScalarFromBigInt reduces v modulo the group order and wraps it.
func ScalarFromBigInt(v *big.Int) Scalar {
	return Scalar{v: new(big.Int).Mod(v, params().n)}
}

// ScalarFromInt64 wraps a small integer as a Scalar.
func ScalarFromInt64(v int64) Scalar {
	return ScalarFromBigInt(big.NewInt(v))
}

// BigInt returns the scalar's value as a non-negative big.Int < q.
func (s Scalar) BigInt() *big.Int {
	return new(big.Int).Set(s.v)
}

// Add returns s + other mod q.
func (s Scalar) Add(other Scalar) Scalar {
	return ScalarFromBigInt(new(big.Int).Add(s.v, other.v))
}

// Mul returns s * other mod q.
func (s Scalar) Mul(other Scalar) Scalar {
	return ScalarFromBigInt(new(big.Int).Mul(s.v, other.v))
}

// Neg returns -s mod q.
func (s Scalar) Neg() Scalar {
	return ScalarFromBigInt(new(big.Int).Neg(s.v))
}

// ScalarEncodedLen is the fixed scalar encoding width for the reference
// curve (32 bytes).
const ScalarEncodedLen = 32

// Bytes encodes s as ScalarEncodedLen big-endian bytes, zero-padded. The
// fixed-width conversion goes through uint256.Int, whose Bytes32 already
// produces a zero-padded 32-byte big-endian array; for the reference
// curve's 32-byte order this is exactly the wire width.
func (s Scalar) Bytes() [ScalarEncodedLen]byte {
	var u uint256.Int
	u.SetFromBig(s.v)
	return u.Bytes32()
}

// ScalarFromBytes decodes a big-endian, zero-padded scalar encoding.
func ScalarFromBytes(b []byte) Scalar {
	return ScalarFromBigInt(new(big.Int).SetBytes(b))
}
