// Package box implements the deterministic Box/register binary container
// (component D): a UTXO-style output carrying a value, a script byte
// blob, a creation height, an optional set of tokens, and a dense set of
// additional registers R4..R9.
package box

import (
	"errors"

	"github.com/utxoproofs/sigmacore/group"
)

// Size and count limits, matching the wire format's single-byte counters
// and the consensus-critical 4 KiB box size cap (spec.md §4.D).
const (
	MaxBoxSize   = 4096
	MaxTokens    = 255
	FirstExtraID = 4 // registers are numbered R0 (value, implicit) .. R9; R4 is the first caller-settable one
	LastExtraID  = 9
	maxRegisters = LastExtraID - FirstExtraID + 1
)

var (
	ErrOversizeBox           = errors.New("box: serialized size exceeds MaxBoxSize")
	ErrPackingViolation      = errors.New("box: registers must be set contiguously starting at R4")
	ErrTooManyTokens         = errors.New("box: token count exceeds MaxTokens")
	ErrRegisterOverflow      = errors.New("box: register id out of range")
	ErrMissingTransactionRef = errors.New("box: transaction id/index not attached; call WithRef first")
)

// Mandatory register ids (spec.md §4.D): R0..R3 are derived from the
// box's other fields rather than stored directly.
const (
	valueRegID        = 0
	scriptBytesRegID  = 1
	tokensRegID       = 2
	creationInfoRegID = 3
)

// TokenID identifies a token by the 32-byte id of the box that minted it.
type TokenID [32]byte

// Token is an amount of a given token carried by a box.
type Token struct {
	ID     TokenID
	Amount uint64
}

// ErgoBox is an immutable UTXO output. Build one with NewBuilder.
//
// transactionID/index are the id of the transaction that created the box
// and its output position within it: attributes of the box (spec.md §3),
// but ones the box cannot always be built with, since a transaction's id
// is itself only known once all of its outputs already exist. A box with
// no attached ref can still be serialized and its non-mandatory registers
// read; only ID() and the R3 creation-info register need WithRef first.
type ErgoBox struct {
	value          uint64
	scriptBytes    []byte
	creationHeight uint32
	tokens         []Token
	registers      map[int]Constant // keys FirstExtraID..LastExtraID
	transactionID  [32]byte
	index          uint16
	hasRef         bool
}

// WithRef returns a copy of b with its enclosing transaction id and output
// index attached.
func (b ErgoBox) WithRef(transactionID [32]byte, index uint16) ErgoBox {
	b.transactionID = transactionID
	b.index = index
	b.hasRef = true
	return b
}

// Value returns the box's nanoERG-equivalent value.
func (b ErgoBox) Value() uint64 { return b.value }

// ScriptBytes returns the opaque guarding-script blob.
func (b ErgoBox) ScriptBytes() []byte { return append([]byte(nil), b.scriptBytes...) }

// CreationHeight returns the height at which the box was created.
func (b ErgoBox) CreationHeight() uint32 { return b.creationHeight }

// Tokens returns the box's token amounts, in insertion order.
func (b ErgoBox) Tokens() []Token { return append([]Token(nil), b.tokens...) }

// Register implements the read-side get(regId) contract of spec.md §4.D:
// R0 returns the monetary value, R1 the script bytes, R2 the token list,
// R3 the creation-info tuple (height, transactionId‖index, present only
// once WithRef has been called), and R4..R9 the user-provided constant or
// (nil, false) if that slot was left unset.
func (b ErgoBox) Register(id int) (Constant, bool) {
	switch id {
	case valueRegID:
		return IntConstant(int64(b.value)), true
	case scriptBytesRegID:
		return ByteArrayConstant(b.ScriptBytes()), true
	case tokensRegID:
		return TokenListConstant(b.Tokens()), true
	case creationInfoRegID:
		if !b.hasRef {
			return nil, false
		}
		return CreationInfoConstant{Height: b.creationHeight, TransactionID: b.transactionID, Index: b.index}, true
	}
	c, ok := b.registers[id]
	return c, ok
}

// Builder constructs an ErgoBox. The zero value is not usable; start from
// NewBuilder.
type Builder struct {
	b   ErgoBox
	err error
}

// NewBuilder starts building a box with the given value and script bytes.
func NewBuilder(value uint64, scriptBytes []byte) *Builder {
	return &Builder{b: ErgoBox{
		value:       value,
		scriptBytes: append([]byte(nil), scriptBytes...),
		registers:   make(map[int]Constant),
	}}
}

// CreationHeight sets the creation height.
func (bb *Builder) CreationHeight(h uint32) *Builder {
	bb.b.creationHeight = h
	return bb
}

// AddToken appends a token amount.
func (bb *Builder) AddToken(id TokenID, amount uint64) *Builder {
	if bb.err != nil {
		return bb
	}
	if len(bb.b.tokens) >= MaxTokens {
		bb.err = ErrTooManyTokens
		return bb
	}
	bb.b.tokens = append(bb.b.tokens, Token{ID: id, Amount: amount})
	return bb
}

// SetRegister sets register id (FirstExtraID..LastExtraID) to c.
func (bb *Builder) SetRegister(id int, c Constant) *Builder {
	if bb.err != nil {
		return bb
	}
	if id < FirstExtraID || id > LastExtraID {
		bb.err = ErrRegisterOverflow
		return bb
	}
	bb.b.registers[id] = c
	return bb
}

// Build validates register packing (registers must be set contiguously
// starting at R4, with no gaps) and the 4 KiB size cap, then returns the
// finished box. The box's id is not computed here; see ID, which needs
// WithRef first.
func (bb *Builder) Build() (ErgoBox, error) {
	if bb.err != nil {
		return ErgoBox{}, bb.err
	}
	if err := checkPacking(bb.b.registers); err != nil {
		return ErgoBox{}, err
	}
	ser, err := Serialize(bb.b)
	if err != nil {
		return ErgoBox{}, err
	}
	if len(ser) > MaxBoxSize {
		return ErgoBox{}, ErrOversizeBox
	}
	return bb.b, nil
}

func checkPacking(regs map[int]Constant) error {
	n := len(regs)
	for i := 0; i < n; i++ {
		if _, ok := regs[FirstExtraID+i]; !ok {
			return ErrPackingViolation
		}
	}
	return nil
}

// ID returns the box's deterministic 24-byte identifier: the soundness
// hash of its serialized bytes together with the id of the transaction
// that created it and its output index within that transaction (spec.md
// §4.D; reusing group.Hash rather than inventing a second digest avoids a
// second hash-facade collaborator in this package). Returns
// ErrMissingTransactionRef if WithRef has not been called.
func (b ErgoBox) ID() ([group.SoundnessBytes]byte, error) {
	if !b.hasRef {
		return [group.SoundnessBytes]byte{}, ErrMissingTransactionRef
	}
	ser, err := Serialize(b)
	if err != nil {
		return [group.SoundnessBytes]byte{}, err
	}
	idxBytes := []byte{byte(b.index >> 8), byte(b.index)}
	return group.Hash(ser, b.transactionID[:], idxBytes), nil
}
