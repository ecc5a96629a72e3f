package config

// Config holds all hethers CLI configuration.
type Config struct {
	DefaultNetwork string            `json:"default_network"`
	DefaultWallet  string            `json:"default_wallet"`
	KeystoreDir    string            `json:"keystore_dir,omitempty"` // defaults to <config dir>/keystores
	ScryptN        int               `json:"scrypt_n"`               // keystore scrypt cost for new wallets
	RelayURLs      map[string]string `json:"relay_urls"`             // network name -> JSON-RPC relay
	LogLevel       string            `json:"log_level"`              // zerolog level name

	// internal: config dir path used for Save()
	configDir string
}
