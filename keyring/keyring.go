// Package keyring provides secure credential storage for the key
// material backing the provisioned VPN connection. It uses the system
// keyring when available, falling back to encrypted local file storage
// when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/yllada/vpn-supervisor/common"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "vpn-supervisor"

	// Suffixes for the per-connection key material entries.
	privateKeySuffix  = "-key"
	certificateSuffix = "-cert"
)

// Storage backend state
var (
	useLocalStorage bool
	localStoreMu    sync.RWMutex
	localStore      map[string]string
	localStoreFile  string
	encryptionKey   []byte
	initialized     bool
)

func init() {
	initStorage()
}

func initStorage() {
	if initialized {
		return
	}

	// Try system keyring first
	testKey := serviceName + "-test-init"
	err := keyring.Set(serviceName, testKey, "test")
	if err == nil {
		keyring.Delete(serviceName, testKey)
		useLocalStorage = false
	} else {
		useLocalStorage = true
		initLocalStorage()
	}
	initialized = true
}

func initLocalStorage() {
	configDir, err := common.GetConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config", common.ConfigDirName)
		os.MkdirAll(configDir, 0700)
	}
	localStoreFile = filepath.Join(configDir, common.CredentialsFileName)

	// Derive the encryption key from machine-specific data so the
	// fallback file is not portable between machines or users.
	hostname, _ := os.Hostname()
	machineID := getMachineID()
	keyData := fmt.Sprintf("%s-%s-%s-%d", serviceName, hostname, machineID, os.Getuid())
	hash := sha256.Sum256([]byte(keyData))
	encryptionKey = hash[:]

	localStore = make(map[string]string)
	loadLocalStore()
}

func getMachineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	return "default-machine-id"
}

func loadLocalStore() {
	data, err := os.ReadFile(localStoreFile)
	if err != nil {
		return
	}

	decrypted, err := decrypt(data)
	if err != nil {
		return
	}

	json.Unmarshal(decrypted, &localStore)
}

func saveLocalStore() error {
	localStoreMu.RLock()
	data, err := json.Marshal(localStore)
	localStoreMu.RUnlock()
	if err != nil {
		return common.WrapError(err, common.ErrCredentialStorage.Error())
	}

	encrypted, err := encrypt(data)
	if err != nil {
		return common.WrapError(err, common.ErrCredentialStorage.Error())
	}

	return os.WriteFile(localStoreFile, encrypted, 0600)
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Store saves a secret under the given key.
func Store(key string, secret string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}

	if useLocalStorage {
		localStoreMu.Lock()
		localStore[key] = secret
		localStoreMu.Unlock()
		return saveLocalStore()
	}

	if err := keyring.Set(serviceName, key, secret); err != nil {
		// Fallback to local storage
		useLocalStorage = true
		initLocalStorage()
		localStoreMu.Lock()
		localStore[key] = secret
		localStoreMu.Unlock()
		return saveLocalStore()
	}
	return nil
}

// Get retrieves a secret by key.
func Get(key string) (string, error) {
	if key == "" {
		return "", errors.New("key cannot be empty")
	}

	if useLocalStorage {
		localStoreMu.RLock()
		secret, exists := localStore[key]
		localStoreMu.RUnlock()
		if !exists {
			return "", common.ErrCredentialsNotFound
		}
		return secret, nil
	}

	secret, err := keyring.Get(serviceName, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", common.ErrCredentialsNotFound
		}
		// Try local storage as fallback
		localStoreMu.RLock()
		secret, exists := localStore[key]
		localStoreMu.RUnlock()
		if exists {
			return secret, nil
		}
		return "", common.ErrCredentialsNotFound
	}
	return secret, nil
}

// Delete removes a secret by key.
func Delete(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	if useLocalStorage {
		localStoreMu.Lock()
		delete(localStore, key)
		localStoreMu.Unlock()
		return saveLocalStore()
	}

	keyring.Delete(serviceName, key)

	// Also remove from local storage if present
	localStoreMu.Lock()
	delete(localStore, key)
	localStoreMu.Unlock()
	saveLocalStore()

	return nil
}

// Exists checks if a secret exists for the given key.
func Exists(key string) bool {
	_, err := Get(key)
	return err == nil
}

// StoreKeyPair saves the private key and certificate backing the
// connection identified by uuid.
func StoreKeyPair(uuid, privateKey, certificate string) error {
	if uuid == "" {
		return errors.New("connection uuid cannot be empty")
	}
	if err := Store(uuid+privateKeySuffix, privateKey); err != nil {
		return err
	}
	return Store(uuid+certificateSuffix, certificate)
}

// GetKeyPair retrieves the private key and certificate stored for the
// connection identified by uuid.
func GetKeyPair(uuid string) (privateKey string, certificate string, err error) {
	privateKey, err = Get(uuid + privateKeySuffix)
	if err != nil {
		return "", "", err
	}
	certificate, err = Get(uuid + certificateSuffix)
	if err != nil {
		return "", "", err
	}
	return privateKey, certificate, nil
}

// DeleteKeyPair removes the key material stored for the connection
// identified by uuid.
func DeleteKeyPair(uuid string) error {
	if err := Delete(uuid + privateKeySuffix); err != nil {
		return err
	}
	return Delete(uuid + certificateSuffix)
}
