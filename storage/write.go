package storage

import (
	"os"
	"strings"

	"github.com/yllada/vpn-supervisor/common"
)

// WriteConfig writes a VPN profile document to path with the private key
// and certificate inlined, the layout expected by the import boundary.
// The file is written with owner-only permissions since it carries key
// material.
func WriteConfig(config, privateKey, certificate, path string) error {
	var b strings.Builder
	b.WriteString(config)
	if !strings.HasSuffix(config, "\n") {
		b.WriteByte('\n')
	}
	if privateKey != "" {
		writeBlock(&b, "key", privateKey)
	}
	if certificate != "" {
		writeBlock(&b, "cert", certificate)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return common.WrapError(err, "failed to write profile document")
	}
	return nil
}

func writeBlock(b *strings.Builder, tag, content string) {
	b.WriteString("<" + tag + ">\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("</" + tag + ">\n")
}
