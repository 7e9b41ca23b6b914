package trust

// DefaultVerifyKeys are the deployed trust anchors for profile metadata, in
// minisign public key format. Documents may be signed by any one of them so
// that keys can rotate without breaking older clients.
//
// The set can be overridden through the application configuration.
var DefaultVerifyKeys = []string{
	"RWQoBTbxyhIltcVB9Zv+SIxCVFkqq9lirsoy7MuzQbMm3lXyTcz3s8Yv",
	"RWSYOEKRa/muw7Cs5v+VdDvqxQl/TMT28Yal/DCKMdD4fGLCe1rfQuZi",
}
