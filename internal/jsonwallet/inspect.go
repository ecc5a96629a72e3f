package jsonwallet

import (
	"encoding/json"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
)

// Info is the unencrypted metadata of a keystore.
type Info struct {
	Address     string           `json:"address"`
	ID          string           `json:"id"`
	Curve       signingkey.Curve `json:"curve"`
	Account     string           `json:"account,omitempty"`
	Alias       string           `json:"alias,omitempty"`
	KDF         string           `json:"kdf"`
	Cipher      string           `json:"cipher"`
	HasMnemonic bool             `json:"has_mnemonic"`
	Path        string           `json:"path,omitempty"`
	Client      string           `json:"client,omitempty"`
}

// Inspect reads what a keystore reveals without its password.
func Inspect(data string) (Info, error) {
	if !IsKeystoreWallet(data) {
		return Info{}, errs.Argument("invalid JSON wallet", "json", "[REDACTED]")
	}
	var ks keystoreJSON
	if err := json.Unmarshal([]byte(data), &ks); err != nil {
		return Info{}, errs.Wrap(err, errs.CodeInvalidArgument, "invalid JSON wallet")
	}
	info := Info{
		Address: GetJSONWalletAddress(data),
		ID:      ks.ID,
		Curve:   signingkey.Secp256k1,
		KDF:     ks.Crypto.KDF,
		Cipher:  ks.Crypto.Cipher,
	}
	if ks.Hethers != nil {
		if ks.Hethers.Curve != "" {
			c, err := signingkey.ParseCurve(ks.Hethers.Curve)
			if err != nil {
				return Info{}, err
			}
			info.Curve = c
		}
		info.Account = ks.Hethers.Account
		info.Alias = ks.Hethers.Alias
	}
	if ks.Ethers != nil && ks.Ethers.Version == mnemonicExtV1 {
		info.HasMnemonic = true
		info.Path = ks.Ethers.Path
		info.Client = ks.Ethers.Client
	}
	return info, nil
}
