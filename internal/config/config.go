package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/jsonwallet"
	"github.com/rs/zerolog"
)

// EnvDir overrides the default config directory.
const EnvDir = "HETHERS_CONFIG_DIR"

const (
	defaultNetwork  = "testnet"
	defaultLogLevel = "warn"

	configFile  = "config.json"
	keystoreDir = "keystores"
)

// Keys lists the settable keys in display order.
var Keys = []string{"default_network", "default_wallet", "keystore_dir", "scrypt_n", "log_level"}

// ResolveDir picks the config directory: dir if set, then $HETHERS_CONFIG_DIR,
// then ~/.hethers.
func ResolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if env := os.Getenv(EnvDir); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".hethers"), nil
}

// Load reads config from dir (or creates defaults). See ResolveDir for how an
// empty dir is resolved.
func Load(dir string) (*Config, error) {
	dir, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg, err := loadJSON(filepath.Join(dir, configFile), defaults())
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg.configDir = dir
	if cfg.RelayURLs == nil {
		cfg.RelayURLs = make(map[string]string)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Keystores returns the directory wallets are stored in.
func (c *Config) Keystores() string {
	if c.KeystoreDir != "" {
		return c.KeystoreDir
	}
	return filepath.Join(c.configDir, keystoreDir)
}

// EncryptOptions returns the keystore options for new wallets.
func (c *Config) EncryptOptions() jsonwallet.EncryptOptions {
	return jsonwallet.EncryptOptions{
		Scrypt: jsonwallet.ScryptParams{N: c.ScryptN, R: jsonwallet.DefaultScryptR, P: jsonwallet.DefaultScryptP},
	}
}

// Level parses LogLevel, falling back to warn.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// SetRelay sets the relay URL for a network. An empty url removes it.
func (c *Config) SetRelay(network, url string) {
	if c.RelayURLs == nil {
		c.RelayURLs = make(map[string]string)
	}
	network = strings.ToLower(network)
	if url == "" {
		delete(c.RelayURLs, network)
		return
	}
	c.RelayURLs[network] = url
}

// Get returns the value of a key as a string. "relay.<network>" reads a
// relay override.
func (c *Config) Get(key string) (string, error) {
	if network, ok := strings.CutPrefix(key, "relay."); ok {
		return c.RelayURLs[strings.ToLower(network)], nil
	}
	switch key {
	case "default_network":
		return c.DefaultNetwork, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "keystore_dir":
		return c.Keystores(), nil
	case "scrypt_n":
		return strconv.Itoa(c.ScryptN), nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set assigns a key from its string form.
func (c *Config) Set(key, value string) error {
	if network, ok := strings.CutPrefix(key, "relay."); ok {
		c.SetRelay(network, value)
		return nil
	}
	switch key {
	case "default_network":
		c.DefaultNetwork = strings.ToLower(value)
	case "default_wallet":
		c.DefaultWallet = value
	case "keystore_dir":
		c.KeystoreDir = value
	case "scrypt_n":
		n, err := strconv.Atoi(value)
		if err != nil || n < 2 || n&(n-1) != 0 {
			return fmt.Errorf("scrypt_n must be a power of two, got %q", value)
		}
		c.ScryptN = n
	case "log_level":
		if _, err := zerolog.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid log level %q", value)
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Relays returns the relay overrides sorted by network name.
func (c *Config) Relays() []string {
	names := make([]string, 0, len(c.RelayURLs))
	for name := range c.RelayURLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- helpers ---

func defaults() *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		ScryptN:        jsonwallet.DefaultScryptN,
		RelayURLs:      make(map[string]string),
		LogLevel:       defaultLogLevel,
	}
}

// loadJSON decodes path over v. A missing file leaves v as is.
func loadJSON[T any](path string, v *T) (*T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return v, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
