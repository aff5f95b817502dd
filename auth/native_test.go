package auth

import (
	"bytes"
	"crypto/sha1"
	"testing"
)

// response XOR SHA1(password) must equal SHA1(salt || SHA1(SHA1(password)));
// an empty password produces an empty response.
func TestNativePasswordBitExact(t *testing.T) {
	password := []byte("secret")
	salt := make([]byte, 20) // 20 zero bytes

	got := NativePassword(password, salt)

	stage1 := sha1.Sum(password)
	stage2 := sha1.Sum(stage1[:])
	h := sha1.New()
	h.Write(salt)
	h.Write(stage2[:])
	want := h.Sum(nil)

	// got XOR stage1 should reproduce `want`.
	recovered := make([]byte, len(got))
	for i := range got {
		recovered[i] = got[i] ^ stage1[i]
	}
	if !bytes.Equal(recovered, want) {
		t.Fatalf("recovered = %x, want %x", recovered, want)
	}
}

func TestNativePasswordEmptyPassword(t *testing.T) {
	got := NativePassword(nil, bytes.Repeat([]byte{0x11}, 20))
	if len(got) != 0 {
		t.Errorf("expected empty response for empty password, got %x", got)
	}
}

func TestNativePasswordDeterministic(t *testing.T) {
	salt := []byte("01234567890123456789")[:20]
	a := NativePassword([]byte("hunter2"), salt)
	b := NativePassword([]byte("hunter2"), salt)
	if !bytes.Equal(a, b) {
		t.Error("NativePassword should be deterministic for the same inputs")
	}
}

func TestNativePasswordDifferentSaltsDiffer(t *testing.T) {
	a := NativePassword([]byte("hunter2"), bytes.Repeat([]byte{0x01}, 20))
	b := NativePassword([]byte("hunter2"), bytes.Repeat([]byte{0x02}, 20))
	if bytes.Equal(a, b) {
		t.Error("different salts must produce different scrambles")
	}
}

func TestAvailableTrueWhenSha1Imported(t *testing.T) {
	if !Available() {
		t.Error("Available() = false, want true: package sha1 is imported by this binary")
	}
}
