package trust

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/yllada/vpn-supervisor/common"
)

// envelope wraps raw key or signature material in the minisign blob layout:
// 2-byte algorithm tag, 8-byte key id, then the material itself.
func envelope(material []byte) string {
	blob := make([]byte, 0, envelopePrefixLen+len(material))
	blob = append(blob, 'E', 'd')
	blob = append(blob, []byte("\x01\x02\x03\x04\x05\x06\x07\x08")...)
	blob = append(blob, material...)
	return base64.StdEncoding.EncodeToString(blob)
}

func genKeyPair(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return envelope(pub), priv
}

func sign(priv ed25519.PrivateKey, content []byte) string {
	return envelope(ed25519.Sign(priv, content))
}

func TestVerifier_ValidateAnyAnchor(t *testing.T) {
	keyA, _ := genKeyPair(t)
	keyB, privB := genKeyPair(t)

	verifier, err := NewVerifier([]string{keyA, keyB})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	content := []byte("profile metadata signed by the second key")
	signature := sign(privB, content)

	// Anchor A is tried first and fails; B verifies.
	message, err := verifier.Validate(signature, content)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !bytes.Equal(message, content) {
		t.Errorf("Validate() returned %q, want original content %q", message, content)
	}
}

func TestVerifier_OrderIndependent(t *testing.T) {
	keyA, privA := genKeyPair(t)
	keyB, _ := genKeyPair(t)
	keyC, _ := genKeyPair(t)

	content := []byte("order must not affect the outcome")
	signature := sign(privA, content)

	orders := [][]string{
		{keyA, keyB, keyC},
		{keyB, keyA, keyC},
		{keyC, keyB, keyA},
	}

	for _, keys := range orders {
		verifier, err := NewVerifier(keys)
		if err != nil {
			t.Fatalf("NewVerifier() error = %v", err)
		}
		if _, err := verifier.Validate(signature, content); err != nil {
			t.Errorf("Validate() error = %v for anchor order %v", err, keys)
		}
	}
}

func TestVerifier_UnknownSigner(t *testing.T) {
	keyA, _ := genKeyPair(t)
	keyB, _ := genKeyPair(t)
	_, privOutsider := genKeyPair(t)

	verifier, err := NewVerifier([]string{keyA, keyB})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	content := []byte("signed by a key outside the anchor set")
	_, err = verifier.Validate(sign(privOutsider, content), content)
	if !errors.Is(err, common.ErrBadSignature) {
		t.Errorf("Validate() error = %v, want ErrBadSignature", err)
	}
}

func TestVerifier_TamperedContent(t *testing.T) {
	keyA, privA := genKeyPair(t)

	verifier, err := NewVerifier([]string{keyA})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	signature := sign(privA, []byte("original content"))
	_, err = verifier.Validate(signature, []byte("tampered content"))
	if !errors.Is(err, common.ErrBadSignature) {
		t.Errorf("Validate() error = %v, want ErrBadSignature", err)
	}
}

func TestVerifier_EmptyAnchorSet(t *testing.T) {
	verifier, err := NewVerifier(nil)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	_, privA := genKeyPair(t)
	content := []byte("nobody trusts this")
	_, err = verifier.Validate(sign(privA, content), content)
	if !errors.Is(err, common.ErrBadSignature) {
		t.Errorf("Validate() error = %v, want ErrBadSignature", err)
	}
}

func TestVerifier_MalformedSignature(t *testing.T) {
	keyA, _ := genKeyPair(t)
	verifier, err := NewVerifier([]string{keyA})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	tests := []struct {
		name      string
		signature string
	}{
		{"invalid base64", "not!!valid@@base64"},
		{"empty", ""},
		{"undersized blob", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"prefix only", envelope(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Validate(tt.signature, []byte("content"))
			if !errors.Is(err, common.ErrMalformedInput) {
				t.Errorf("Validate(%q) error = %v, want ErrMalformedInput", tt.signature, err)
			}
		})
	}
}

func TestNewVerifier_MalformedKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"invalid base64", "%%%%"},
		{"wrong length", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 20))},
		{"truncated key material", envelope(bytes.Repeat([]byte{1}, 16))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewVerifier([]string{tt.key}); !errors.Is(err, common.ErrMalformedInput) {
				t.Errorf("NewVerifier() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestDefaultVerifyKeys_Decode(t *testing.T) {
	verifier, err := NewVerifier(DefaultVerifyKeys)
	if err != nil {
		t.Fatalf("NewVerifier(DefaultVerifyKeys) error = %v", err)
	}
	if verifier.AnchorCount() != len(DefaultVerifyKeys) {
		t.Errorf("AnchorCount() = %d, want %d", verifier.AnchorCount(), len(DefaultVerifyKeys))
	}
}
