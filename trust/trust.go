// Package trust validates the authenticity of downloaded VPN profile
// metadata against a fixed set of trusted signing keys.
package trust

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/yllada/vpn-supervisor/common"
)

// envelopePrefixLen is the number of bytes preceding the key or signature
// material in a minisign blob: a 2-byte algorithm tag and an 8-byte key id.
// Both are discarded after decoding; only the trailing material is used.
const envelopePrefixLen = 10

// DecodeKey extracts the Ed25519 public key from a minisign-format blob:
// base64(<signature_algorithm> || <key_id> || <public_key>).
func DecodeKey(encoded string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 in public key", common.ErrMalformedInput)
	}
	if len(raw) != envelopePrefixLen+ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key blob is %d bytes, want %d",
			common.ErrMalformedInput, len(raw), envelopePrefixLen+ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw[envelopePrefixLen:]), nil
}

// Verifier holds an immutable, ordered set of trust anchors. A document is
// considered authentic when any one of them verifies its signature; the
// envelope carries no signer identity, so verification is by trial.
type Verifier struct {
	anchors []ed25519.PublicKey
}

// NewVerifier decodes the given minisign-format public keys into a Verifier.
// The anchor set is fixed for the lifetime of the Verifier; build it once at
// startup and share it.
func NewVerifier(keys []string) (*Verifier, error) {
	anchors := make([]ed25519.PublicKey, 0, len(keys))
	for _, k := range keys {
		pub, err := DecodeKey(k)
		if err != nil {
			return nil, err
		}
		anchors = append(anchors, pub)
	}
	return &Verifier{anchors: anchors}, nil
}

// AnchorCount returns the number of trust anchors held by the Verifier.
func (v *Verifier) AnchorCount() int {
	return len(v.anchors)
}

// Validate checks a detached minisign signature against the content.
// The signature blob uses the same envelope as the public keys; the 10-byte
// prefix is stripped before verification. Each anchor is tried in order and
// the first one that verifies wins. On success the original content is
// returned, so callers can use the result as the authenticated message.
//
// The returned error never identifies which anchors were tried.
func (v *Verifier) Validate(signature string, content []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 in signature", common.ErrMalformedInput)
	}
	if len(raw) != envelopePrefixLen+ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: signature blob is %d bytes, want %d",
			common.ErrMalformedInput, len(raw), envelopePrefixLen+ed25519.SignatureSize)
	}
	sig := raw[envelopePrefixLen:]

	common.LogDebug("Trying %d verifiers", len(v.anchors))
	for i, anchor := range v.anchors {
		if ed25519.Verify(anchor, content, sig) {
			common.LogDebug("Signature verified by anchor %d", i+1)
			return content, nil
		}
	}
	return nil, common.ErrBadSignature
}
