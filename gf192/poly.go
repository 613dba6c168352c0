package gf192

import (
	"errors"
)

// ErrDuplicatePoint is returned by Interpolate when two points share the
// same x coordinate.
var ErrDuplicatePoint = errors.New("gf192: duplicate interpolation point")

// ErrPointCountMismatch is returned by Interpolate when xs and ys differ
// in length, or by PolyFromBytes when the byte slice is not a multiple of
// Width.
var ErrPointCountMismatch = errors.New("gf192: point/value count mismatch")

// Poly is a GF(2^192) polynomial with its constant term (degree 0) held
// out of band: Coeffs[i] is the coefficient of x^(i+1). This mirrors the
// wire format of sigma's CTHRESHOLD proof bytes, where the constant term
// is always the (already-known) parent challenge.
type Poly struct {
	Coeffs []Element
}

// Degree returns the polynomial's degree, i.e. len(Coeffs).
func (p Poly) Degree() int {
	return len(p.Coeffs)
}

// Evaluate computes p(x) given the out-of-band constant term, via Horner's
// method. x is an interpolation index (1-based child position); it is
// embedded into the field via FromInt.
func (p Poly) Evaluate(constant Element, x uint8) Element {
	xe := FromInt(x)
	if len(p.Coeffs) == 0 {
		return constant
	}
	acc := p.Coeffs[len(p.Coeffs)-1]
	for i := len(p.Coeffs) - 2; i >= 0; i-- {
		acc = acc.Mul(xe).Add(p.Coeffs[i])
	}
	return acc.Mul(xe).Add(constant)
}

// ToBytes packs the non-constant coefficients in ascending-degree order,
// each Width bytes wide. For a k-of-n threshold this is (n-k)*Width bytes.
func (p Poly) ToBytes() []byte {
	out := make([]byte, 0, len(p.Coeffs)*Width)
	for _, c := range p.Coeffs {
		b := c.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// PolyFromBytes reconstructs a Poly from the packed non-constant
// coefficients produced by ToBytes. The constant term is supplied
// separately by callers (it is the parent challenge and is never
// serialized).
func PolyFromBytes(b []byte) (Poly, error) {
	if len(b)%Width != 0 {
		return Poly{}, ErrPointCountMismatch
	}
	n := len(b) / Width
	coeffs := make([]Element, n)
	for i := 0; i < n; i++ {
		e, err := FromBytes(b[i*Width : (i+1)*Width])
		if err != nil {
			return Poly{}, err
		}
		coeffs[i] = e
	}
	return Poly{Coeffs: coeffs}, nil
}

// Interpolate returns the unique polynomial of degree len(xs)-1 passing
// through every (xs[i], ys[i]) pair, including x=0 (the constant term),
// via Lagrange interpolation. xs must be distinct. The returned Poly's
// Coeffs hold only the non-constant coefficients (see PolyFromBytes/ToBytes).
func Interpolate(xs []uint8, ys []Element) (Poly, error) {
	if len(xs) != len(ys) {
		return Poly{}, ErrPointCountMismatch
	}
	n := len(xs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if xs[i] == xs[j] {
				return Poly{}, ErrDuplicatePoint
			}
		}
	}

	full := make([]Element, n) // full[d] = coefficient of x^d, d=0..n-1
	for i := 0; i < n; i++ {
		numer := []Element{One} // product_{j!=i} (x + xs[j])
		denom := One            // product_{j!=i} (xs[i] + xs[j])
		xi := FromInt(xs[i])
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			xj := FromInt(xs[j])
			numer = mulLinear(numer, xj)
			denom = denom.Mul(xi.Add(xj))
		}
		scale := ys[i].Mul(denom.Inverse())
		for d := range numer {
			full[d] = full[d].Add(numer[d].Mul(scale))
		}
	}

	return Poly{Coeffs: full[1:]}, nil
}

// mulLinear multiplies a polynomial (ascending coefficients, coeffs[d] is
// the coefficient of x^d) by the linear factor (x + root), using synthetic
// multiplication. Subtraction equals addition in GF(2^n), so (x - root)
// and (x + root) are the same factor.
func mulLinear(coeffs []Element, root Element) []Element {
	out := make([]Element, len(coeffs)+1)
	for i := range out {
		var term Element
		if i < len(coeffs) {
			term = coeffs[i].Mul(root)
		}
		if i > 0 {
			term = term.Add(coeffs[i-1])
		}
		out[i] = term
	}
	return out
}
