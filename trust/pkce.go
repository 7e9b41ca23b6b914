package trust

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// codeVerifierCharset is the unreserved character set allowed for PKCE code
// verifiers by RFC 7636 section 4.1.
const codeVerifierCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._~"

// DefaultCodeVerifierLength is the length used when requesting a new code
// verifier without an explicit length.
const DefaultCodeVerifierLength = 128

// GenCodeVerifier generates a high entropy code verifier for PKCE.
func GenCodeVerifier(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeVerifierLength
	}
	max := big.NewInt(int64(len(codeVerifierCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate code verifier: %w", err)
		}
		out[i] = codeVerifierCharset[n.Int64()]
	}
	return string(out), nil
}

// GenCodeChallenge transforms a PKCE code verifier into the S256 code
// challenge: the unpadded base64url encoding of its SHA-256 digest.
func GenCodeChallenge(codeVerifier string) string {
	sum := sha256.Sum256([]byte(codeVerifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
