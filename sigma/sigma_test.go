package sigma

import (
	"math/big"
	"testing"

	"github.com/utxoproofs/sigmacore/group"
	"github.com/utxoproofs/sigmacore/metrics"
)

func dlogPair(t *testing.T, w int64) (ProveDlog, group.Scalar) {
	t.Helper()
	s := group.ScalarFromInt64(w)
	h := group.Exp(group.Generator(), s.BigInt())
	return ProveDlog{H: h}, s
}

func dhtPair(t *testing.T, w int64) (ProveDHTuple, group.Scalar) {
	t.Helper()
	g := group.Generator()
	hBase := group.Exp(g, big.NewInt(999))
	s := group.ScalarFromInt64(w)
	u := group.Exp(g, s.BigInt())
	v := group.Exp(hBase, s.BigInt())
	return ProveDHTuple{G: g, H: hBase, U: u, V: v}, s
}

func TestProveVerifyDlogRoundTrip(t *testing.T) {
	leaf, w := dlogPair(t, 42)
	hints := NewHints().AddDlogSecret(leaf, w)
	propBytes := []byte("script-bytes")
	message := []byte("message")

	proof, err := Prove(leaf, hints, propBytes, message)
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)

	if err := Verify(leaf, propBytes, message, wire); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestProveVerifyDHTupleRoundTrip(t *testing.T) {
	leaf, w := dhtPair(t, 17)
	hints := NewHints().AddDHTupleSecret(leaf, w)
	propBytes := []byte("dht-script")
	message := []byte("msg")

	proof, err := Prove(leaf, hints, propBytes, message)
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	if err := Verify(leaf, propBytes, message, wire); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestProveMissingSecret(t *testing.T) {
	leaf, _ := dlogPair(t, 42)
	_, err := Prove(leaf, NewHints(), nil, nil)
	if err != ErrProverMissingSecret {
		t.Fatalf("got %v, want ErrProverMissingSecret", err)
	}
}

func TestCANDRequiresAllSecrets(t *testing.T) {
	l1, w1 := dlogPair(t, 1)
	l2, _ := dlogPair(t, 2)
	and, err := NewCAND(l1, l2)
	if err != nil {
		t.Fatal(err)
	}
	hints := NewHints().AddDlogSecret(l1, w1)
	if _, err := Prove(and, hints, nil, nil); err != ErrProverMissingSecret {
		t.Fatalf("got %v, want ErrProverMissingSecret", err)
	}
}

func TestCANDRoundTrip(t *testing.T) {
	l1, w1 := dlogPair(t, 1)
	l2, w2 := dlogPair(t, 2)
	and, err := NewCAND(l1, l2)
	if err != nil {
		t.Fatal(err)
	}
	hints := NewHints().AddDlogSecret(l1, w1).AddDlogSecret(l2, w2)
	propBytes := []byte("p")
	msg := []byte("m")
	proof, err := Prove(and, hints, propBytes, msg)
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	// CAND shares the parent challenge, so only the root challenge (24) is
	// written, followed by each ProveDlog leaf's 32-byte response.
	wantLen := group.SoundnessBytes + 2*group.ScalarEncodedLen
	if len(wire) != wantLen {
		t.Fatalf("got %d bytes, want %d", len(wire), wantLen)
	}
	if err := Verify(and, propBytes, msg, wire); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestCORRoundTripEitherSecret(t *testing.T) {
	l1, w1 := dlogPair(t, 5)
	l2, _ := dlogPair(t, 6)
	or, err := NewCOR(l1, l2)
	if err != nil {
		t.Fatal(err)
	}
	hints := NewHints().AddDlogSecret(l1, w1)
	propBytes := []byte("or-prop")
	msg := []byte("or-msg")
	proof, err := Prove(or, hints, propBytes, msg)
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	// root challenge + child0 challenge + 2 responses (child1's challenge is
	// derived, never written)
	wantLen := group.SoundnessBytes + group.SoundnessBytes + 2*group.ScalarEncodedLen
	if len(wire) != wantLen {
		t.Fatalf("got %d bytes, want %d", len(wire), wantLen)
	}
	if err := Verify(or, propBytes, msg, wire); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestCORRealChildNotLast(t *testing.T) {
	l1, w1 := dlogPair(t, 7)
	l2, _ := dlogPair(t, 8)
	or, err := NewCOR(l1, l2)
	if err != nil {
		t.Fatal(err)
	}
	// Secret is known only for the *first* child, exercising the XOR
	// derivation when the realized branch is not the structurally last one.
	hints := NewHints().AddDlogSecret(l1, w1)
	proof, err := Prove(or, hints, []byte("p"), []byte("m"))
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	if err := Verify(or, []byte("p"), []byte("m"), wire); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestCThresholdRoundTrip(t *testing.T) {
	leaves := make([]SigmaBoolean, 5)
	ws := make([]group.Scalar, 5)
	for i := range leaves {
		l, w := dlogPair(t, int64(100+i))
		leaves[i] = l
		ws[i] = w
	}
	th, err := NewCThreshold(2, leaves...)
	if err != nil {
		t.Fatal(err)
	}
	hints := NewHints()
	for i := 0; i < 2; i++ {
		hints.AddDlogSecret(leaves[i].(ProveDlog), ws[i])
	}
	propBytes := []byte("thresh-prop")
	msg := []byte("thresh-msg")
	proof, err := Prove(th, hints, propBytes, msg)
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	if err := Verify(th, propBytes, msg, wire); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestCThresholdAllRequired(t *testing.T) {
	// k == n: the polynomial carries zero non-constant coefficients, which
	// exercises the empty-read path in Serialize/Parse.
	leaves := make([]SigmaBoolean, 3)
	ws := make([]group.Scalar, 3)
	hints := NewHints()
	for i := range leaves {
		l, w := dlogPair(t, int64(300+i))
		leaves[i] = l
		ws[i] = w
		hints.AddDlogSecret(l, w)
	}
	th, err := NewCThreshold(3, leaves...)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := Prove(th, hints, []byte("p"), []byte("m"))
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	if err := Verify(th, []byte("p"), []byte("m"), wire); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestCThresholdInsufficientSecrets(t *testing.T) {
	leaves := make([]SigmaBoolean, 3)
	for i := range leaves {
		l, _ := dlogPair(t, int64(200+i))
		leaves[i] = l
	}
	th, err := NewCThreshold(2, leaves...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Prove(th, NewHints(), nil, nil); err != ErrProverMissingSecret {
		t.Fatalf("got %v, want ErrProverMissingSecret", err)
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	leaf, w := dlogPair(t, 42)
	hints := NewHints().AddDlogSecret(leaf, w)
	proof, err := Prove(leaf, hints, []byte("p"), []byte("m"))
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	wire[0] ^= 0xff
	if err := Verify(leaf, []byte("p"), []byte("m"), wire); err != ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	leaf, w := dlogPair(t, 42)
	hints := NewHints().AddDlogSecret(leaf, w)
	proof, err := Prove(leaf, hints, []byte("p"), []byte("m1"))
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	if err := Verify(leaf, []byte("p"), []byte("m2"), wire); err != ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsEmptyProof(t *testing.T) {
	leaf, _ := dlogPair(t, 1)
	if err := Verify(leaf, nil, nil, nil); err != ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestParseRejectsTrailingBytes(t *testing.T) {
	leaf, w := dlogPair(t, 3)
	hints := NewHints().AddDlogSecret(leaf, w)
	proof, err := Prove(leaf, hints, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	wire := append(Serialize(proof), 0x00)
	if _, err := Parse(leaf, wire); err != ErrMalformedProof {
		t.Fatalf("got %v, want ErrMalformedProof", err)
	}
}

func TestParseRejectsTruncatedProof(t *testing.T) {
	leaf, w := dlogPair(t, 3)
	hints := NewHints().AddDlogSecret(leaf, w)
	proof, err := Prove(leaf, hints, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	if _, err := Parse(leaf, wire[:len(wire)-1]); err != ErrMalformedProof {
		t.Fatalf("got %v, want ErrMalformedProof", err)
	}
}

func TestNewCANDRejectsSingleChild(t *testing.T) {
	l, _ := dlogPair(t, 1)
	if _, err := NewCAND(l); err != ErrInvalidProposition {
		t.Fatalf("got %v, want ErrInvalidProposition", err)
	}
}

func TestNewCThresholdRejectsBadK(t *testing.T) {
	l1, _ := dlogPair(t, 1)
	l2, _ := dlogPair(t, 2)
	if _, err := NewCThreshold(0, l1, l2); err != ErrInvalidProposition {
		t.Fatalf("got %v, want ErrInvalidProposition", err)
	}
	if _, err := NewCThreshold(3, l1, l2); err != ErrInvalidProposition {
		t.Fatalf("got %v, want ErrInvalidProposition", err)
	}
}

func TestMeteredObserverCounts(t *testing.T) {
	l1, _ := dlogPair(t, 1)
	l2, _ := dlogPair(t, 2)
	and, err := NewCAND(l1, l2)
	if err != nil {
		t.Fatal(err)
	}
	reg := metrics.NewRegistry()
	obs := NewMeteredObserver(reg)
	observe(obs, and)
	if got := reg.Counter("sigma.node.CAND").Value(); got != 1 {
		t.Fatalf("CAND count = %d, want 1", got)
	}
	if got := reg.Counter("sigma.node.ProveDlog").Value(); got != 2 {
		t.Fatalf("ProveDlog count = %d, want 2", got)
	}
}

func TestProveParseVerifyWithObserverCounts(t *testing.T) {
	l1, w1 := dlogPair(t, 1)
	l2, w2 := dlogPair(t, 2)
	and, err := NewCAND(l1, l2)
	if err != nil {
		t.Fatal(err)
	}
	hints := NewHints().AddDlogSecret(l1, w1).AddDlogSecret(l2, w2)
	propBytes := []byte("p")
	msg := []byte("m")

	proveReg := metrics.NewRegistry()
	proof, err := ProveWithObserver(and, hints, propBytes, msg, NewMeteredObserver(proveReg))
	if err != nil {
		t.Fatal(err)
	}
	if got := proveReg.Counter("sigma.node.CAND").Value(); got != 1 {
		t.Fatalf("Prove: CAND count = %d, want 1", got)
	}
	if got := proveReg.Counter("sigma.node.ProveDlog").Value(); got != 2 {
		t.Fatalf("Prove: ProveDlog count = %d, want 2", got)
	}

	wire := Serialize(proof)

	parseReg := metrics.NewRegistry()
	if _, err := ParseWithObserver(and, wire, NewMeteredObserver(parseReg)); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := parseReg.Counter("sigma.node.ProveDlog").Value(); got != 2 {
		t.Fatalf("Parse: ProveDlog count = %d, want 2", got)
	}

	verifyReg := metrics.NewRegistry()
	if err := VerifyWithObserver(and, propBytes, msg, wire, NewMeteredObserver(verifyReg)); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got := verifyReg.Counter("sigma.node.CAND").Value(); got != 1 {
		t.Fatalf("Verify: CAND count = %d, want 1", got)
	}
}

func TestVerifyRejectsWrongWitness(t *testing.T) {
	leaf, _ := dlogPair(t, 42)
	wrong := group.ScalarFromInt64(43)
	hints := NewHints().AddDlogSecret(leaf, wrong)

	proof, err := Prove(leaf, hints, []byte("p"), []byte("m"))
	if err != nil {
		t.Fatal(err)
	}
	wire := Serialize(proof)
	if err := Verify(leaf, []byte("p"), []byte("m"), wire); err != ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}
