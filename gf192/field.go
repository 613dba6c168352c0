// Package gf192 implements arithmetic in the binary field GF(2^192), the
// coefficient field for the threshold-proposition interpolating polynomial
// used by package sigma. Elements are represented as three 64-bit limbs
// (192 bits total); addition is bitwise XOR, multiplication is carryless
// polynomial multiplication reduced modulo a fixed irreducible pentanomial.
package gf192

import (
	"errors"

	"github.com/holiman/uint256"
)

// Width is soundnessBits/8 for the reference 192-bit soundness level: the
// byte width of an Element and of every coefficient in a serialized Poly.
const Width = 24

// reductionPoly is the low-degree part of the fixed irreducible polynomial
// x^192 + x^7 + x^2 + x + 1 used to reduce products back into GF(2^192).
const reductionPoly = 0x87 // bits 7,2,1,0

// ErrInvalidLength is returned when decoding a byte slice of the wrong width.
var ErrInvalidLength = errors.New("gf192: element must be exactly 24 bytes")

// Element is a value in GF(2^192), limbs[0] holding the low 64 bits.
type Element struct {
	limbs [3]uint64
}

// Zero is the additive identity.
var Zero = Element{}

// One is the multiplicative identity.
var One = Element{limbs: [3]uint64{1, 0, 0}}

// FromInt embeds a small non-negative integer as a field element: the
// interpolation points used by the threshold proposition (1..255) are
// treated as field elements via their plain binary representation.
func FromInt(v uint8) Element {
	return Element{limbs: [3]uint64{uint64(v), 0, 0}}
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.limbs[0] == 0 && e.limbs[1] == 0 && e.limbs[2] == 0
}

// Equal reports whether e and other represent the same field element.
func (e Element) Equal(other Element) bool {
	return e.limbs == other.limbs
}

// Add returns e + other. Addition in GF(2^n) is bitwise XOR.
func (e Element) Add(other Element) Element {
	return Element{limbs: [3]uint64{
		e.limbs[0] ^ other.limbs[0],
		e.limbs[1] ^ other.limbs[1],
		e.limbs[2] ^ other.limbs[2],
	}}
}

// Mul returns e * other via carryless multiplication followed by reduction
// modulo x^192 + x^7 + x^2 + x + 1.
func (e Element) Mul(other Element) Element {
	var prod [6]uint64
	for i := 0; i < 192; i++ {
		if !testBit(e.limbs[:], i) {
			continue
		}
		shiftXorInto(prod[:], other.limbs[:], i)
	}
	return reduce(prod)
}

// Square returns e * e.
func (e Element) Square() Element {
	return e.Mul(e)
}

// Inverse returns the multiplicative inverse of e via Fermat's little
// theorem: e^(2^192 - 2), computed as e^(sum_{i=1}^{191} 2^i) by repeated
// squaring. e must be non-zero.
func (e Element) Inverse() Element {
	if e.IsZero() {
		return Zero
	}
	result := One
	cur := e
	for i := 1; i < 192; i++ {
		cur = cur.Square()
		result = result.Mul(cur)
	}
	return result
}

// Bytes encodes e as 24 big-endian bytes.
func (e Element) Bytes() [Width]byte {
	var u uint256.Int
	u[0], u[1], u[2], u[3] = e.limbs[0], e.limbs[1], e.limbs[2], 0
	full := u.Bytes32()
	var out [Width]byte
	copy(out[:], full[32-Width:])
	return out
}

// FromBytes decodes a 24-byte big-endian encoding produced by Bytes.
func FromBytes(b []byte) (Element, error) {
	if len(b) != Width {
		return Element{}, ErrInvalidLength
	}
	var full [32]byte
	copy(full[32-Width:], b)
	var u uint256.Int
	u.SetBytes(full[:])
	return Element{limbs: [3]uint64{u[0], u[1], u[2]}}, nil
}

// testBit reports whether bit i (0 = least significant) is set across a
// little-endian limb slice.
func testBit(limbs []uint64, i int) bool {
	word, bit := i/64, uint(i%64)
	if word >= len(limbs) {
		return false
	}
	return (limbs[word]>>bit)&1 == 1
}

// shiftXorInto XORs (src << shift), treated as a carryless polynomial
// shift, into dst. dst must be large enough to hold the shifted value.
func shiftXorInto(dst []uint64, src []uint64, shift int) {
	wordShift := shift / 64
	bitShift := uint(shift % 64)
	for i := len(src) - 1; i >= 0; i-- {
		v := src[i]
		idx := i + wordShift
		if idx < len(dst) {
			if bitShift == 0 {
				dst[idx] ^= v
			} else {
				dst[idx] ^= v << bitShift
			}
		}
		if bitShift != 0 && idx+1 < len(dst) {
			dst[idx+1] ^= v >> (64 - bitShift)
		}
	}
}

// reduce folds a 384-bit carryless product back into a 192-bit element
// modulo x^192 + x^7 + x^2 + x + 1.
func reduce(prod [6]uint64) Element {
	for i := 383; i >= 192; i-- {
		if !testBit(prod[:], i) {
			continue
		}
		clearBit(prod[:], i)
		shiftXorInto(prod[:], []uint64{reductionPoly}, i-192)
	}
	return Element{limbs: [3]uint64{prod[0], prod[1], prod[2]}}
}

func clearBit(limbs []uint64, i int) {
	word, bit := i/64, uint(i%64)
	limbs[word] &^= 1 << bit
}
