package wire

import (
	"bytes"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Minute).Truncate(0)
	payload := []byte(`{"id":"1"}`)

	b := Encode(exp, payload)
	gotExp, gotPayload, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !gotExp.Equal(exp) {
		t.Fatalf("expiry mismatch: got %v want %v", gotExp, exp)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("payload mismatch: got %q want %q", gotPayload, payload)
	}
}

func TestRoundTripEmptyPayload(t *testing.T) {
	exp := time.Unix(0, 42)
	b := Encode(exp, nil)
	gotExp, gotPayload, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !gotExp.Equal(exp) || len(gotPayload) != 0 {
		t.Fatalf("got exp=%v payload=%v", gotExp, gotPayload)
	}
}

// Decode must reject trailing bytes (strict framing).
func TestDecodeRejectsTrailing(t *testing.T) {
	b := Encode(time.Now(), []byte("x"))
	b = append(b, 0xDE, 0xAD)
	if _, _, err := Decode(b); err == nil {
		t.Fatalf("Decode should reject trailing bytes")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":       nil,
		"short":       []byte("TAGC"),
		"bad magic":   append([]byte("NOPE"), make([]byte, 13)...),
		"bad version": func() []byte { b := Encode(time.Now(), []byte("v")); b[4] = 99; return b }(),
		"truncated":   Encode(time.Now(), []byte("value"))[:20],
	}
	for name, b := range cases {
		if _, _, err := Decode(b); err == nil {
			t.Errorf("%s: Decode should fail", name)
		}
	}
}
