// Package trust implements signature verification for downloaded VPN
// profile metadata, plus the small cryptographic helpers used around
// provisioning.
//
// # Signature verification
//
// Profile metadata is signed with minisign-compatible tooling. Keys and
// signatures travel in a compact envelope:
//
//	base64(<2-byte algorithm tag> || <8-byte key id> || <material>)
//
// The set of valid signing keys is fixed at deployment, but a document may
// be signed by any one of them (key rotation), and the envelope does not
// identify the signer. The Verifier therefore tries every anchor in order
// and accepts the first that verifies:
//
//	verifier, err := trust.NewVerifier(trust.DefaultVerifyKeys)
//	...
//	message, err := verifier.Validate(signature, content)
//	if errors.Is(err, common.ErrBadSignature) {
//	    // content must be discarded
//	}
//
// # Helpers
//
// The package also carries PKCE code verifier/challenge generation
// (RFC 7636) and client certificate common name extraction. These are
// plain data transformations with no state.
package trust
