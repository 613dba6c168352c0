package box

import (
	"errors"

	"github.com/utxoproofs/sigmacore/group"
	"github.com/utxoproofs/sigmacore/rlp"
)

// ErrUnknownConstantTag is returned when a register's leading type-tag
// byte does not match any known Constant variant.
var ErrUnknownConstantTag = errors.New("box: unknown constant type tag")

const (
	tagInt           byte = 0x01
	tagBool          byte = 0x02
	tagByteArray     byte = 0x03
	tagGroupElement  byte = 0x04
	tagTokenList     byte = 0x05
	tagCreationInfo  byte = 0x06
)

// Constant is the closed sum type of register values: the part of the
// wire format spec.md treats as an opaque "script collaborator" blob.
// Supplementing that opaque boundary, this package gives it one concrete,
// deterministic encoding: a one-byte type tag followed by a payload.
type Constant interface {
	isConstant()
	encode() []byte
}

// IntConstant is a signed 64-bit integer register value.
type IntConstant int64

func (IntConstant) isConstant() {}
func (c IntConstant) encode() []byte {
	payload, _ := rlp.EncodeToBytes(int64(c))
	return append([]byte{tagInt}, payload...)
}

// BoolConstant is a boolean register value. rlp would encode false as
// 0x80 (its empty-string form); the payload is the bare 0x00/0x01 flag
// instead.
type BoolConstant bool

func (BoolConstant) isConstant() {}
func (c BoolConstant) encode() []byte {
	if c {
		return []byte{tagBool, 0x01}
	}
	return []byte{tagBool, 0x00}
}

// ByteArrayConstant is an arbitrary byte-string register value.
type ByteArrayConstant []byte

func (ByteArrayConstant) isConstant() {}
func (c ByteArrayConstant) encode() []byte {
	payload, _ := rlp.EncodeToBytes([]byte(c))
	return append([]byte{tagByteArray}, payload...)
}

// GroupElementConstant is a curve point register value, encoded with the
// same 33-byte compressed form the sigma group facade uses.
type GroupElementConstant struct {
	Point group.Point
}

func (GroupElementConstant) isConstant() {}
func (c GroupElementConstant) encode() []byte {
	enc := group.EncodePoint(c.Point)
	return append([]byte{tagGroupElement}, enc[:]...)
}

// TokenListConstant is the mandatory R2 register value: the box's own
// token list, read back as a Constant so every register access shares
// one return type regardless of slot. It is never written to the wire —
// spec.md §4.D only ever serializes R4..R9 — so it carries an encode()
// purely to satisfy the Constant interface.
type TokenListConstant []Token

func (TokenListConstant) isConstant() {}
func (c TokenListConstant) encode() []byte {
	buf := []byte{tagTokenList, byte(len(c))}
	for _, t := range c {
		buf = append(buf, t.ID[:]...)
		amt, _ := rlp.EncodeToBytes(t.Amount)
		buf = append(buf, amt...)
	}
	return buf
}

// CreationInfoConstant is the mandatory R3 register value: the box's
// creation height together with the transaction id and output index that
// gave it its ref (box.ErgoBox.WithRef). Like TokenListConstant, never
// serialized on the wire.
type CreationInfoConstant struct {
	Height        uint32
	TransactionID [32]byte
	Index         uint16
}

func (CreationInfoConstant) isConstant() {}
func (c CreationInfoConstant) encode() []byte {
	buf := []byte{tagCreationInfo}
	h, _ := rlp.EncodeToBytes(c.Height)
	buf = append(buf, h...)
	buf = append(buf, c.TransactionID[:]...)
	idx, _ := rlp.EncodeToBytes(c.Index)
	buf = append(buf, idx...)
	return buf
}

// decodeConstant decodes a Constant from b, which must hold exactly one
// encoded constant (tag byte + payload) and nothing else — the caller is
// responsible for slicing out that exact span using the length prefix
// serialize.go writes ahead of every register.
func decodeConstant(b []byte) (Constant, error) {
	if len(b) == 0 {
		return nil, ErrMalformedBox
	}
	tag, rest := b[0], b[1:]
	switch tag {
	case tagInt:
		var v int64
		if err := rlp.DecodeBytes(rest, &v); err != nil {
			return nil, ErrMalformedBox
		}
		return IntConstant(v), nil
	case tagBool:
		if len(rest) != 1 {
			return nil, ErrMalformedBox
		}
		return BoolConstant(rest[0] != 0), nil
	case tagByteArray:
		var v []byte
		if err := rlp.DecodeBytes(rest, &v); err != nil {
			return nil, ErrMalformedBox
		}
		return ByteArrayConstant(v), nil
	case tagGroupElement:
		if len(rest) != group.EncodedLen {
			return nil, ErrMalformedBox
		}
		p, err := group.DecodePoint(rest)
		if err != nil {
			return nil, ErrMalformedBox
		}
		return GroupElementConstant{Point: p}, nil
	default:
		return nil, ErrUnknownConstantTag
	}
}
