package nm

import (
	"fmt"
	"os"

	"github.com/yllada/vpn-supervisor/common"
)

// GetCertKey reads back the certificate and private key backing the
// stored connection, via the file paths recorded in its VPN settings.
// Diagnostic read-back only; the settings are not inspected otherwise.
func GetCertKey(client Client, uuid string) (cert string, key string, err error) {
	conn, err := client.GetConnectionByUUID(uuid)
	if err != nil {
		common.LogError("Can't fetch stored VPN connection with uuid %s", uuid)
		return "", "", common.WrapError(err, "can't fetch VPN profile")
	}

	data := conn.Settings.VpnData()
	certPath, okCert := data["cert"]
	keyPath, okKey := data["key"]
	if !okCert || !okKey {
		return "", "", fmt.Errorf("connection %s has no cert/key paths", uuid)
	}

	certBytes, err := os.ReadFile(certPath)
	if err != nil {
		return "", "", common.WrapError(err, "failed to read certificate")
	}
	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return "", "", common.WrapError(err, "failed to read private key")
	}
	return string(certBytes), string(keyBytes), nil
}
