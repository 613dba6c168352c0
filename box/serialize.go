package box

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// ErrMalformedBox is returned when a byte slice cannot be parsed as a
// well-formed ErgoBox.
var ErrMalformedBox = errors.New("box: malformed box bytes")

// Serialize encodes b into the deterministic wire layout (spec.md §4.D):
//
//	varint value
//	varint len(scriptBytes) || scriptBytes
//	varint creationHeight
//	byte tokenCount || tokenCount * (32-byte id || varint amount)
//	byte registerCount || registerCount * (uint16 length || length bytes)
//
// Registers are written densely starting at R4, in ascending id order;
// registerCount alone (rather than per-register ids) is enough to
// reconstruct the mapping because Builder.Build already enforces
// contiguous packing.
func Serialize(b ErgoBox) ([]byte, error) {
	var buf bytes.Buffer
	writeUvarint(&buf, b.value)
	writeUvarint(&buf, uint64(len(b.scriptBytes)))
	buf.Write(b.scriptBytes)
	writeUvarint(&buf, uint64(b.creationHeight))

	if len(b.tokens) > MaxTokens {
		return nil, ErrTooManyTokens
	}
	buf.WriteByte(byte(len(b.tokens)))
	for _, t := range b.tokens {
		buf.Write(t.ID[:])
		writeUvarint(&buf, t.Amount)
	}

	n := len(b.registers)
	if n > maxRegisters {
		return nil, ErrPackingViolation
	}
	buf.WriteByte(byte(n))
	for i := 0; i < n; i++ {
		c, ok := b.registers[FirstExtraID+i]
		if !ok {
			return nil, ErrPackingViolation
		}
		enc := c.encode()
		var lenBytes [2]byte
		binary.BigEndian.PutUint16(lenBytes[:], uint16(len(enc)))
		buf.Write(lenBytes[:])
		buf.Write(enc)
	}

	return buf.Bytes(), nil
}

// Parse decodes a box from its serialized wire form.
func Parse(b []byte) (ErgoBox, error) {
	r := bytes.NewReader(b)

	value, err := readUvarint(r)
	if err != nil {
		return ErgoBox{}, err
	}
	scriptLen, err := readUvarint(r)
	if err != nil {
		return ErgoBox{}, err
	}
	scriptBytes := make([]byte, scriptLen)
	if err := readFull(r, scriptBytes); err != nil {
		return ErgoBox{}, err
	}
	heightU, err := readUvarint(r)
	if err != nil {
		return ErgoBox{}, err
	}

	tokenCountByte, err := r.ReadByte()
	if err != nil {
		return ErgoBox{}, ErrMalformedBox
	}
	tokens := make([]Token, tokenCountByte)
	for i := range tokens {
		var id TokenID
		if err := readFull(r, id[:]); err != nil {
			return ErgoBox{}, err
		}
		amount, err := readUvarint(r)
		if err != nil {
			return ErgoBox{}, err
		}
		tokens[i] = Token{ID: id, Amount: amount}
	}

	regCountByte, err := r.ReadByte()
	if err != nil {
		return ErgoBox{}, ErrMalformedBox
	}
	if int(regCountByte) > maxRegisters {
		return ErgoBox{}, ErrPackingViolation
	}
	registers := make(map[int]Constant, regCountByte)
	for i := 0; i < int(regCountByte); i++ {
		var lenBytes [2]byte
		if err := readFull(r, lenBytes[:]); err != nil {
			return ErgoBox{}, err
		}
		l := binary.BigEndian.Uint16(lenBytes[:])
		payload := make([]byte, l)
		if err := readFull(r, payload); err != nil {
			return ErgoBox{}, err
		}
		c, err := decodeConstant(payload)
		if err != nil {
			return ErgoBox{}, err
		}
		registers[FirstExtraID+i] = c
	}

	if r.Len() != 0 {
		return ErgoBox{}, ErrMalformedBox
	}

	return ErgoBox{
		value:          value,
		scriptBytes:    scriptBytes,
		creationHeight: uint32(heightU),
		tokens:         tokens,
		registers:      registers,
	}, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func readUvarint(r *bytes.Reader) (uint64, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, ErrMalformedBox
	}
	return v, nil
}

func readFull(r *bytes.Reader, dst []byte) error {
	n, err := r.Read(dst)
	if len(dst) == 0 {
		return nil
	}
	if err != nil || n != len(dst) {
		return ErrMalformedBox
	}
	return nil
}
