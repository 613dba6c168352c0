// Package group is the elliptic-curve group and hash facade the sigma
// protocol is built over (spec component A). It exposes a fixed
// prime-order short-Weierstrass curve with the SEC2 secp256k1 parameters,
// using hand-rolled affine math/big arithmetic. It exposes only the
// sigma-protocol-relevant surface (generator, scalar exponentiation, point
// encode/decode, hashing, randomness); there is no ECDSA signing or
// address derivation here.
package group

import (
	"errors"
	"math/big"
	"sync"
)

// ErrInvalidEncoding is returned by DecodePoint when the input is not a
// valid compressed point encoding.
var ErrInvalidEncoding = errors.New("group: invalid point encoding")

// curveParams holds the SEC2 secp256k1 constants: y^2 = x^3 + 7 (mod p),
// order n, base point (gx, gy).
type curveParams struct {
	p, n, b *big.Int
	gx, gy  *big.Int
}

var (
	initOnce sync.Once
	curve    *curveParams
)

func initCurve() {
	p, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", 16)
	n, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	gx, _ := new(big.Int).SetString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", 16)
	gy, _ := new(big.Int).SetString("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8", 16)
	curve = &curveParams{p: p, n: n, b: big.NewInt(7), gx: gx, gy: gy}
}

func params() *curveParams {
	initOnce.Do(initCurve)
	return curve
}

// Point is an opaque element of the curve group, in affine coordinates.
// The zero value represents the point at infinity (the group identity).
type Point struct {
	x, y *big.Int // nil, nil means identity
}

// Generator returns the fixed group generator G.
func Generator() Point {
	c := params()
	return Point{x: new(big.Int).Set(c.gx), y: new(big.Int).Set(c.gy)}
}

// Order returns the prime order q of the group.
func Order() *big.Int {
	return new(big.Int).Set(params().n)
}

// IsIdentity reports whether p is the group identity.
func (p Point) IsIdentity() bool {
	return p.x == nil || p.y == nil
}

// isOnCurve checks y^2 = x^3 + 7 (mod p).
func isOnCurve(x, y *big.Int) bool {
	c := params()
	if x.Sign() < 0 || y.Sign() < 0 || x.Cmp(c.p) >= 0 || y.Cmp(c.p) >= 0 {
		return false
	}
	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, c.p)

	x3 := new(big.Int).Mul(x, x)
	x3.Mod(x3, c.p)
	x3.Mul(x3, x)
	x3.Add(x3, c.b)
	x3.Mod(x3, c.p)

	return y2.Cmp(x3) == 0
}

// add returns p1 + p2 using affine addition formulas; identity handled as
// a sentinel (nil, nil) pair.
func add(p1, p2 Point) Point {
	c := params()
	if p1.IsIdentity() {
		return p2
	}
	if p2.IsIdentity() {
		return p1
	}
	if p1.x.Cmp(p2.x) == 0 {
		if p1.y.Cmp(p2.y) != 0 {
			return Point{} // p2 == -p1
		}
		return double(p1)
	}

	dy := new(big.Int).Sub(p2.y, p1.y)
	dx := new(big.Int).Sub(p2.x, p1.x)
	dx.Mod(dx, c.p)
	dxInv := new(big.Int).ModInverse(dx, c.p)
	slope := new(big.Int).Mul(dy, dxInv)
	slope.Mod(slope, c.p)

	x3 := new(big.Int).Mul(slope, slope)
	x3.Sub(x3, p1.x)
	x3.Sub(x3, p2.x)
	x3.Mod(x3, c.p)

	y3 := new(big.Int).Sub(p1.x, x3)
	y3.Mul(y3, slope)
	y3.Sub(y3, p1.y)
	y3.Mod(y3, c.p)

	return Point{x: x3, y: y3}
}

func double(p Point) Point {
	c := params()
	if p.IsIdentity() || p.y.Sign() == 0 {
		return Point{}
	}
	x1sq := new(big.Int).Mul(p.x, p.x)
	x1sq.Mod(x1sq, c.p)
	num := new(big.Int).Mul(big.NewInt(3), x1sq)
	num.Mod(num, c.p)

	den := new(big.Int).Mul(big.NewInt(2), p.y)
	den.Mod(den, c.p)
	denInv := new(big.Int).ModInverse(den, c.p)
	slope := new(big.Int).Mul(num, denInv)
	slope.Mod(slope, c.p)

	x3 := new(big.Int).Mul(slope, slope)
	x3.Sub(x3, new(big.Int).Mul(big.NewInt(2), p.x))
	x3.Mod(x3, c.p)

	y3 := new(big.Int).Sub(p.x, x3)
	y3.Mul(y3, slope)
	y3.Sub(y3, p.y)
	y3.Mod(y3, c.p)

	return Point{x: x3, y: y3}
}

// Mul returns p1 * p2, i.e. the group operation written multiplicatively
// per spec.md's notation (g^w etc.), implemented as elliptic-curve point
// addition.
func Mul(p1, p2 Point) Point {
	return add(p1, p2)
}

// Exp returns g^k: k applications of the group operation to g, via
// double-and-add. k is reduced modulo the group order first.
func Exp(g Point, k *big.Int) Point {
	scalar := new(big.Int).Mod(k, params().n)
	if scalar.Sign() == 0 {
		return Point{}
	}
	result := Point{}
	base := g
	for i := scalar.BitLen() - 1; i >= 0; i-- {
		result = double(result)
		if scalar.Bit(i) == 1 {
			result = add(result, base)
		}
	}
	return result
}

// Inv returns p^-1, the negation of p.
func Inv(p Point) Point {
	if p.IsIdentity() {
		return p
	}
	c := params()
	return Point{x: new(big.Int).Set(p.x), y: new(big.Int).Sub(c.p, p.y)}
}

// Normalize returns p unchanged; affine coordinates are already the
// canonical representation for this curve, so Normalize exists only to
// satisfy the facade's API shape for backends whose internal
// representation (e.g. Jacobian/projective) needs explicit conversion.
func Normalize(p Point) Point {
	return p
}

// Equal reports whether two points represent the same group element.
func (p Point) Equal(other Point) bool {
	if p.IsIdentity() || other.IsIdentity() {
		return p.IsIdentity() == other.IsIdentity()
	}
	return p.x.Cmp(other.x) == 0 && p.y.Cmp(other.y) == 0
}

// EncodedLen is the fixed compressed point encoding width.
const EncodedLen = 33

// EncodePoint serializes p as 1 sign byte (0x02/0x03) plus a 32-byte X
// coordinate, or 33 zero bytes for the identity.
func EncodePoint(p Point) [EncodedLen]byte {
	var out [EncodedLen]byte
	if p.IsIdentity() {
		return out
	}
	if p.y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	xb := p.x.Bytes()
	copy(out[1+32-len(xb):], xb)
	return out
}

// DecodePoint parses a 33-byte compressed point encoding. It fails with
// ErrInvalidEncoding if the leading byte is not in {0,2,3}, if it claims
// identity but carries non-zero bytes, or if the coordinate does not lie
// on the curve.
func DecodePoint(b []byte) (Point, error) {
	if len(b) != EncodedLen {
		return Point{}, ErrInvalidEncoding
	}
	allZero := true
	for _, v := range b {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return Point{}, nil
	}
	if b[0] != 0x02 && b[0] != 0x03 {
		return Point{}, ErrInvalidEncoding
	}
	c := params()
	x := new(big.Int).SetBytes(b[1:])
	if x.Cmp(c.p) >= 0 {
		return Point{}, ErrInvalidEncoding
	}
	y := sqrtModP(x, c.p, c.b)
	if y == nil {
		return Point{}, ErrInvalidEncoding
	}
	wantOdd := b[0] == 0x03
	if (y.Bit(0) == 1) != wantOdd {
		y = new(big.Int).Sub(c.p, y)
	}
	if !isOnCurve(x, y) {
		return Point{}, ErrInvalidEncoding
	}
	return Point{x: x, y: y}, nil
}

// sqrtModP computes a square root of (x^3+b) mod p for p = secp256k1's
// prime, which satisfies p = 3 (mod 4), so sqrt(a) = a^((p+1)/4) mod p.
func sqrtModP(x, p, b *big.Int) *big.Int {
	rhs := new(big.Int).Mul(x, x)
	rhs.Mod(rhs, p)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, b)
	rhs.Mod(rhs, p)

	exp := new(big.Int).Add(p, big.NewInt(1))
	exp.Rsh(exp, 2)
	y := new(big.Int).Exp(rhs, exp, p)

	check := new(big.Int).Mul(y, y)
	check.Mod(check, p)
	if check.Cmp(rhs) != 0 {
		return nil
	}
	return y
}
