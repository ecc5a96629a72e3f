package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Mohsinsiddi/hethers/internal/jsonwallet"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
)

// Errors.
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrInvalidKey     = errors.New("invalid private key")
)

// Entry is the index record of a stored keystore.
type Entry struct {
	Name      string           `json:"name"`
	Address   string           `json:"address,omitempty"`
	Account   string           `json:"account,omitempty"`
	Curve     signingkey.Curve `json:"curve"`
	File      string           `json:"file"`
	IsDefault bool             `json:"is_default"`
	CreatedAt string           `json:"created_at"`
}

// Store persists the wallet index.
type Store interface {
	Load() ([]*Entry, error)
	Save([]*Entry) error
}

// Manager keeps named keystores on disk, or in memory for tests.
type Manager struct {
	store   Store
	dir     string
	files   map[string]string
	wallets map[string]*Entry
	loaded  bool
	encrypt jsonwallet.EncryptOptions
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithInMemoryStore keeps the index and keystores in memory.
func WithInMemoryStore() ManagerOption {
	return func(m *Manager) {
		m.store = &memStore{}
		m.dir = ""
	}
}

// WithStore sets a custom index store.
func WithStore(s Store) ManagerOption {
	return func(m *Manager) {
		m.store = s
	}
}

// WithKeystoreDir stores keystore files and the index (wallets.json) in dir.
func WithKeystoreDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.dir = dir
		m.store = NewJSONStore(filepath.Join(dir, "wallets.json"))
	}
}

// WithEncryptOptions sets the options keystores are written with.
func WithEncryptOptions(opts jsonwallet.EncryptOptions) ManagerOption {
	return func(m *Manager) {
		m.encrypt = opts
	}
}

// NewManager creates a new wallet manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		wallets: make(map[string]*Entry),
		files:   make(map[string]string),
		store:   &memStore{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add encrypts w with password and stores it under name.
func (m *Manager) Add(name string, w *Wallet, password string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	data, err := w.Encrypt(password, m.encrypt)
	if err != nil {
		return fmt.Errorf("encrypting wallet: %w", err)
	}
	return m.put(name, data)
}

// AddWithKey imports a hex private key on curve.
func (m *Manager) AddWithKey(name, hexKey string, curve signingkey.Curve, password string, opts ...Option) error {
	w, err := New(hexKey, append([]Option{WithCurve(curve)}, opts...)...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return m.Add(name, w, password)
}

// Import stores an existing keystore without decrypting it.
func (m *Manager) Import(name, keystoreJSON string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, exists := m.wallets[name]; exists {
		return ErrWalletExists
	}
	return m.put(name, keystoreJSON)
}

// Get returns a wallet entry by name.
func (m *Manager) Get(name string) (*Entry, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	w, ok := m.wallets[name]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

// Keystore returns the keystore JSON stored under name.
func (m *Manager) Keystore(name string) (string, error) {
	e, err := m.Get(name)
	if err != nil {
		return "", err
	}
	if m.dir == "" {
		return m.files[e.File], nil
	}
	data, err := os.ReadFile(filepath.Join(m.dir, e.File))
	if err != nil {
		return "", fmt.Errorf("reading keystore: %w", err)
	}
	return string(data), nil
}

// Open decrypts the named wallet.
func (m *Manager) Open(ctx context.Context, name, password string, progress jsonwallet.ProgressFunc) (*Wallet, error) {
	data, err := m.Keystore(name)
	if err != nil {
		return nil, err
	}
	return FromEncryptedJSON(ctx, data, password, progress)
}

// Remove deletes a wallet and its keystore.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	e, ok := m.wallets[name]
	if !ok {
		return ErrWalletNotFound
	}
	if m.dir == "" {
		delete(m.files, e.File)
	} else if err := os.Remove(filepath.Join(m.dir, e.File)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing keystore: %w", err)
	}
	delete(m.wallets, name)
	return m.persist()
}

// List returns all wallets sorted by name.
func (m *Manager) List() []*Entry {
	m.load() //nolint:errcheck
	out := make([]*Entry, 0, len(m.wallets))
	for _, w := range m.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetDefault marks a wallet as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.wallets[name]; !ok {
		return ErrWalletNotFound
	}
	for _, w := range m.wallets {
		w.IsDefault = w.Name == name
	}
	return m.persist()
}

// Default returns the default wallet, or nil if none.
func (m *Manager) Default() *Entry {
	m.load() //nolint:errcheck
	for _, w := range m.wallets {
		if w.IsDefault {
			return w
		}
	}
	// a lone wallet is the default
	if len(m.wallets) == 1 {
		for _, w := range m.wallets {
			return w
		}
	}
	return nil
}

// --- internal ---

func (m *Manager) put(name, data string) error {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("invalid wallet name %q", name)
	}
	info, err := jsonwallet.Inspect(data)
	if err != nil {
		return err
	}
	e := &Entry{
		Name:      name,
		Address:   info.Address,
		Account:   info.Account,
		Curve:     info.Curve,
		File:      name + ".json",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if m.dir == "" {
		m.files[e.File] = data
	} else {
		if err := os.MkdirAll(m.dir, 0o700); err != nil {
			return fmt.Errorf("creating keystore dir: %w", err)
		}
		if err := os.WriteFile(filepath.Join(m.dir, e.File), []byte(data), 0o600); err != nil {
			return fmt.Errorf("writing keystore: %w", err)
		}
	}
	m.wallets[name] = e
	return m.persist()
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	wallets, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, w := range wallets {
		m.wallets[w.Name] = w
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	return m.store.Save(m.List())
}

// --- in-memory store ---

type memStore struct {
	wallets []*Entry
}

func (s *memStore) Load() ([]*Entry, error) {
	return s.wallets, nil
}

func (s *memStore) Save(wallets []*Entry) error {
	s.wallets = wallets
	return nil
}

// --- JSON file store ---

// JSONStore persists the index to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed index store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() ([]*Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var wallets []*Entry
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (s *JSONStore) Save(wallets []*Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
