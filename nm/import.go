package nm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yllada/vpn-supervisor/common"
	"github.com/yllada/vpn-supervisor/storage"
)

// ImportPlugin parses a profile document on disk into a manager-native
// connection. Plugins are registered per connection type; an import only
// proceeds when exactly one plugin claims the requested type.
type ImportPlugin interface {
	// Name is the connection type this plugin handles, e.g. "openvpn".
	Name() string
	// Import parses the document at path into connection settings.
	Import(path string) (*Connection, error)
}

// Importer turns a raw VPN profile document plus credential material into
// a connection object, through a temp-file boundary into the registered
// import plugin.
type Importer struct {
	plugins []ImportPlugin
	// credDir receives the extracted certificate and key files, which
	// must outlive the import temp directory.
	credDir string
}

// NewImporter builds an Importer over the given plugins. With no plugins
// the built-in OpenVPN importer is registered.
func NewImporter(plugins ...ImportPlugin) (*Importer, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return nil, err
	}
	credDir := filepath.Join(configDir, "credentials")
	if err := common.EnsureDir(credDir); err != nil {
		return nil, common.WrapError(err, "failed to create credentials directory")
	}

	if len(plugins) == 0 {
		plugins = []ImportPlugin{&OpenVPNPlugin{CredDir: credDir}}
	}
	return &Importer{plugins: plugins, credDir: credDir}, nil
}

// pluginFor returns the single plugin registered for the connection type.
func (im *Importer) pluginFor(name string) (ImportPlugin, error) {
	var matches []ImportPlugin
	for _, p := range im.plugins {
		if p.Name() == name {
			matches = append(matches, p)
		}
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("%w: expected one %s import plugin, got %d",
			common.ErrImportFailed, name, len(matches))
	}
	return matches[0], nil
}

// ImportProfile writes the profile document with the private key and
// certificate inlined to a temporary file, feeds it through the OpenVPN
// import plugin, and removes the temporary files. The profile material is
// consumed once; only the resulting connection survives.
func (im *Importer) ImportProfile(config, privateKey, certificate string) (*Connection, error) {
	plugin, err := im.pluginFor("openvpn")
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", common.ConfigDirName+"-")
	if err != nil {
		return nil, common.WrapError(err, "failed to create import directory")
	}
	defer os.RemoveAll(dir)

	target := filepath.Join(dir, common.ImportFileName)
	if err := storage.WriteConfig(config, privateKey, certificate, target); err != nil {
		return nil, err
	}

	return plugin.Import(target)
}

// OpenVPNPlugin is the built-in importer for OpenVPN profile documents.
// It parses the directives NetworkManager's own OpenVPN plugin
// understands and extracts inline key material to files under CredDir so
// the stored connection can reference them after the import temp files
// are gone.
type OpenVPNPlugin struct {
	CredDir string
}

// Name returns the connection type handled by this plugin.
func (p *OpenVPNPlugin) Name() string { return "openvpn" }

// Import parses the OpenVPN document at path into connection settings.
func (p *OpenVPNPlugin) Import(path string) (*Connection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "failed to read profile document")
	}

	content := string(raw)
	connUUID := uuid.NewString()
	data := map[string]string{
		"connection-type": "tls",
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "remote":
			if len(fields) >= 2 {
				remote := fields[1]
				if len(fields) >= 3 {
					remote += ":" + fields[2]
				}
				data["remote"] = remote
				id = fields[1]
			}
		case "proto":
			if len(fields) >= 2 && strings.HasPrefix(fields[1], "tcp") {
				data["proto-tcp"] = "yes"
			}
		case "cipher":
			if len(fields) >= 2 {
				data["cipher"] = fields[1]
			}
		case "auth":
			if len(fields) >= 2 {
				data["auth"] = fields[1]
			}
		case "comp-lzo":
			data["comp-lzo"] = "yes"
		}
	}

	if _, ok := data["remote"]; !ok {
		return nil, fmt.Errorf("%w: profile has no remote directive", common.ErrImportFailed)
	}

	// Inline credential blocks become files the stored connection can
	// keep referring to.
	for tag, key := range map[string]string{"ca": "ca", "cert": "cert", "key": "key"} {
		block, ok := inlineBlock(content, tag)
		if !ok {
			continue
		}
		ext := ".pem"
		if tag == "key" {
			ext = ".key"
		}
		credPath := filepath.Join(p.CredDir, connUUID+"-"+tag+ext)
		if err := os.WriteFile(credPath, []byte(block), 0600); err != nil {
			return nil, common.WrapError(err, "failed to extract "+tag+" material")
		}
		data[key] = credPath
	}

	settings := ConnectionSettings{
		"connection": {
			"id":   id,
			"uuid": connUUID,
			"type": common.ConnectionTypeVPN,
		},
		"vpn": {
			"service-type": "org.freedesktop.NetworkManager.openvpn",
			"data":         data,
		},
		"ipv4": {"method": "auto"},
		"ipv6": {"method": "auto"},
	}

	return &Connection{UUID: connUUID, Settings: settings}, nil
}

// inlineBlock extracts the body of an inline <tag>...</tag> block.
func inlineBlock(content, tag string) (string, bool) {
	openTag := "<" + tag + ">"
	closeTag := "</" + tag + ">"

	start := strings.Index(content, openTag)
	if start < 0 {
		return "", false
	}
	start += len(openTag)
	end := strings.Index(content[start:], closeTag)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(content[start:start+end]) + "\n", true
}
