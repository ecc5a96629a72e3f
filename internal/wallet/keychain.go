package wallet

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/99designs/keyring"
)

const keychainService = "hethers"

// ErrPassphraseNotFound is returned when no passphrase is stored for a ref.
var ErrPassphraseNotFound = errors.New("passphrase not found")

// Keychain stores keystore passphrases so wallets can be unlocked without
// prompting.
type Keychain interface {
	Store(name, passphrase string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// PassphraseRef is the keychain key a wallet's passphrase is stored under.
func PassphraseRef(name string) string {
	return keychainService + "." + name
}

// OSKeychain keeps passphrases in the OS keychain.
type OSKeychain struct {
	ring keyring.Keyring
}

// DefaultKeychain opens the OS keychain, falling back to an encrypted file
// in fileDir when no keychain service is available.
func DefaultKeychain(fileDir string, prompt keyring.PromptFunc) *OSKeychain {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         prompt,
	}

	// headless Linux has no secret service
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:      keychainService,
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
			FileDir:          fileDir,
			FilePasswordFunc: prompt,
		})
	}
	return &OSKeychain{ring: ring}
}

// NewFileKeychain opens a file-backed keychain in dir locked with password.
func NewFileKeychain(dir, password string) (*OSKeychain, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          dir,
		FilePasswordFunc: keyring.FixedStringPrompt(password),
	})
	if err != nil {
		return nil, fmt.Errorf("opening keychain: %w", err)
	}
	return &OSKeychain{ring: ring}, nil
}

// Store saves the passphrase for a wallet name and returns its reference.
func (k *OSKeychain) Store(name, passphrase string) (string, error) {
	if k.ring == nil {
		return "", errors.New("keychain not available")
	}
	ref := PassphraseRef(name)
	err := k.ring.Set(keyring.Item{
		Key:         ref,
		Data:        []byte(passphrase),
		Label:       "hethers keystore passphrase",
		Description: name,
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a passphrase by its reference.
func (k *OSKeychain) Retrieve(ref string) (string, error) {
	if k.ring == nil {
		return "", errors.New("keychain not available")
	}
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrPassphraseNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored passphrase. Missing entries are not an error.
func (k *OSKeychain) Delete(ref string) error {
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(ref)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// InMemoryKeychain is a Keychain for tests.
type InMemoryKeychain struct {
	data map[string]string
}

// NewInMemoryKeychain creates an empty in-memory keychain.
func NewInMemoryKeychain() *InMemoryKeychain {
	return &InMemoryKeychain{data: make(map[string]string)}
}

func (k *InMemoryKeychain) Store(name, passphrase string) (string, error) {
	ref := PassphraseRef(name)
	k.data[ref] = passphrase
	return ref, nil
}

func (k *InMemoryKeychain) Retrieve(ref string) (string, error) {
	v, ok := k.data[ref]
	if !ok {
		return "", ErrPassphraseNotFound
	}
	return v, nil
}

func (k *InMemoryKeychain) Delete(ref string) error {
	delete(k.data, ref)
	return nil
}
