package trust

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// CommonNameFromCert extracts the subject common name from a PEM encoded
// client certificate.
func CommonNameFromCert(pemData []byte) (string, error) {
	block, _ := pem.Decode(pemData)
	if block == nil || block.Type != "CERTIFICATE" {
		return "", errors.New("no PEM certificate block found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse certificate: %w", err)
	}
	if cert.Subject.CommonName == "" {
		return "", errors.New("certificate has no common name")
	}
	return cert.Subject.CommonName, nil
}
