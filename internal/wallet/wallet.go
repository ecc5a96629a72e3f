// Package wallet binds a signing key to a Hedera account identity and turns
// transaction requests into signed HAPI payloads.
package wallet

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"math/big"

	"github.com/Mohsinsiddi/hethers/internal/address"
	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/Mohsinsiddi/hethers/internal/jsonwallet"
	"github.com/Mohsinsiddi/hethers/internal/mnemonic"
	"github.com/Mohsinsiddi/hethers/internal/signingkey"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is a signing key with an optional account, alias, mnemonic and
// provider. It is never mutated after construction.
type Wallet struct {
	key      signingkey.SigningKey
	account  *address.AccountID
	alias    string
	mnemonic *mnemonic.Mnemonic
	provider Provider
}

type options struct {
	curve    signingkey.Curve
	account  *address.AccountID
	alias    *string
	mnemonic *mnemonic.Mnemonic
	provider Provider
}

// Option configures wallet construction.
type Option func(*options)

// WithCurve selects the curve a hex private key is read on. The default is
// secp256k1.
func WithCurve(c signingkey.Curve) Option {
	return func(o *options) { o.curve = c }
}

// WithAccount binds the wallet to an account id.
func WithAccount(id address.AccountID) Option {
	return func(o *options) { o.account = &id }
}

// WithAlias declares the alias the key must match. An empty alias is still
// checked.
func WithAlias(alias string) Option {
	return func(o *options) { o.alias = &alias }
}

// WithMnemonic declares the mnemonic the key must derive from.
func WithMnemonic(m mnemonic.Mnemonic) Option {
	return func(o *options) { o.mnemonic = &m }
}

// WithProvider attaches a provider.
func WithProvider(p Provider) Option {
	return func(o *options) { o.provider = p }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New reads a hex private key (0x-prefixed or not, optionally DER-wrapped).
func New(privateKey string, opts ...Option) (*Wallet, error) {
	o := collect(opts)
	curve := o.curve
	if curve == "" {
		curve = signingkey.Secp256k1
	}
	key, err := signingkey.FromHex(privateKey, curve)
	if err != nil {
		return nil, err
	}
	return build(key, o)
}

// FromSigningKey wraps an existing key.
func FromSigningKey(key signingkey.SigningKey, opts ...Option) (*Wallet, error) {
	if key == nil {
		return nil, errs.Argument("missing signing key", "signingKey", nil)
	}
	return build(key, collect(opts))
}

// Account is the struct form of a wallet description.
type Account struct {
	Account    string
	Alias      *string
	PrivateKey string
	Curve      signingkey.Curve
	Mnemonic   *mnemonic.Mnemonic
}

// FromAccount builds a wallet from its struct description.
func FromAccount(a Account, opts ...Option) (*Wallet, error) {
	var pre []Option
	if a.Curve != "" {
		pre = append(pre, WithCurve(a.Curve))
	}
	if a.Account != "" {
		id, err := address.ParseAccount(a.Account)
		if err != nil {
			return nil, err
		}
		pre = append(pre, WithAccount(id))
	}
	if a.Alias != nil {
		pre = append(pre, WithAlias(*a.Alias))
	}
	if a.Mnemonic != nil {
		pre = append(pre, WithMnemonic(*a.Mnemonic))
	}
	return New(a.PrivateKey, append(pre, opts...)...)
}

// FromMnemonic derives a wallet from a phrase. An empty path selects the
// curve's default path.
func FromMnemonic(phrase, path string, curve signingkey.Curve, opts ...Option) (*Wallet, error) {
	if curve == "" {
		curve = signingkey.Secp256k1
	}
	m := mnemonic.Mnemonic{Phrase: phrase, Path: path}.Normalize(curve)
	key, err := m.Key(curve)
	if err != nil {
		return nil, err
	}
	return FromSigningKey(key, append(opts, WithMnemonic(m))...)
}

// RandomOptions tune CreateRandom.
type RandomOptions struct {
	Curve signingkey.Curve
	Path  string
	// ExtraEntropy is mixed into the random entropy with keccak256.
	ExtraEntropy []byte
	Rand         io.Reader
}

// CreateRandom makes a wallet backed by a fresh 12-word mnemonic.
func CreateRandom(opts RandomOptions, walletOpts ...Option) (*Wallet, error) {
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	entropy := make([]byte, 16)
	if _, err := io.ReadFull(r, entropy); err != nil {
		return nil, errs.Wrap(err, errs.CodeUnsupportedOperation, "reading entropy")
	}
	if len(opts.ExtraEntropy) > 0 {
		entropy = crypto.Keccak256(entropy, opts.ExtraEntropy)[:16]
	}
	phrase, err := mnemonic.EntropyToMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return FromMnemonic(phrase, opts.Path, opts.Curve, walletOpts...)
}

// FromEncryptedJSON decrypts a keystore without blocking the caller's
// goroutine; cancelling ctx abandons the wait.
func FromEncryptedJSON(ctx context.Context, json, password string, progress jsonwallet.ProgressFunc) (*Wallet, error) {
	res := <-jsonwallet.DecryptAsync(ctx, json, password, progress)
	if res.Err != nil {
		return nil, res.Err
	}
	return fromKeystore(res.Account)
}

// FromEncryptedJSONSync decrypts a keystore on the calling goroutine.
func FromEncryptedJSONSync(json, password string) (*Wallet, error) {
	account, err := jsonwallet.Decrypt(json, password)
	if err != nil {
		return nil, err
	}
	return fromKeystore(account)
}

func fromKeystore(ka jsonwallet.KeystoreAccount) (*Wallet, error) {
	key, err := signingkey.New(ka.Curve, ka.PrivateKey)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if ka.Account != "" {
		id, err := address.ParseAccount(ka.Account)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAccount(id))
	}
	if ka.Alias != "" {
		opts = append(opts, WithAlias(ka.Alias))
	}
	if ka.Mnemonic != nil {
		opts = append(opts, WithMnemonic(*ka.Mnemonic))
	}
	return FromSigningKey(key, opts...)
}

func build(key signingkey.SigningKey, o options) (*Wallet, error) {
	w := &Wallet{key: key, account: o.account, provider: o.provider}

	computed := address.ComputeAlias(key.PublicKey())
	if o.alias != nil {
		if *o.alias != computed {
			return nil, errs.From(errs.PrivateKeyAliasMismatch, "alias", *o.alias)
		}
		w.alias = *o.alias
	}
	if key.Curve() == signingkey.Ed25519 {
		w.alias = computed
	}

	if o.mnemonic != nil {
		m := o.mnemonic.Normalize(key.Curve())
		derived, err := m.Key(key.Curve())
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(derived.PrivateKey(), key.PrivateKey()) {
			return nil, errs.From(errs.MnemonicPrivateKeyMismatch, "mnemonic", "[REDACTED]")
		}
		w.mnemonic = &m
	}
	return w, nil
}

// Connect returns a copy of w using p.
func (w *Wallet) Connect(p Provider) *Wallet {
	c := *w
	c.provider = p
	return &c
}

// ConnectAccount returns a copy of w bound to id.
func (w *Wallet) ConnectAccount(id address.AccountID) *Wallet {
	c := *w
	c.account = &id
	return &c
}

// Address is the long-zero address of the account when one is set,
// otherwise the secp256k1 EVM address. Ed25519 wallets without an account
// have no address.
func (w *Wallet) Address() string {
	if w.account != nil {
		return w.account.Address().Hex()
	}
	if w.key.Curve() == signingkey.Secp256k1 {
		if addr, err := signingkey.ComputeAddress(w.key.PublicKey()); err == nil {
			return addr.Hex()
		}
	}
	return ""
}

// Account returns the bound account id, if any.
func (w *Wallet) Account() (address.AccountID, bool) {
	if w.account == nil {
		return address.AccountID{}, false
	}
	return *w.account, true
}

func (w *Wallet) Alias() string { return w.alias }

func (w *Wallet) Curve() signingkey.Curve { return w.key.Curve() }

// PublicKey is the uncompressed secp256k1 key or the Ed25519 key.
func (w *Wallet) PublicKey() []byte { return w.key.PublicKey() }

func (w *Wallet) SigningKey() signingkey.SigningKey { return w.key }

func (w *Wallet) Provider() Provider { return w.provider }

// PrivateKey returns the raw private key as 0x-prefixed hex.
func (w *Wallet) PrivateKey() string {
	return "0x" + hex.EncodeToString(w.key.PrivateKey())
}

// Mnemonic returns the phrase the key derives from, if known.
func (w *Wallet) Mnemonic() *mnemonic.Mnemonic {
	if w.mnemonic == nil {
		return nil
	}
	m := *w.mnemonic
	return &m
}

// GetChainID returns the chain id of the provider's network.
func (w *Wallet) GetChainID(ctx context.Context) (int64, error) {
	if w.provider == nil {
		return 0, errs.From(errs.MissingProvider, "operation", "getChainId")
	}
	return w.provider.Network().ChainID, nil
}

// GetBalance returns the wallet's balance as reported by the provider.
func (w *Wallet) GetBalance(ctx context.Context) (*big.Int, error) {
	if w.provider == nil {
		return nil, errs.From(errs.MissingProvider, "operation", "getBalance")
	}
	addr := w.Address()
	if addr == "" {
		return nil, errs.Unsupported("missing account", "getBalance")
	}
	a, err := address.ToAddress(addr)
	if err != nil {
		return nil, err
	}
	return w.provider.GetBalance(ctx, a)
}

// SignMessage returns the EIP-191 signature of message as hex. Ed25519
// wallets cannot sign messages.
func (w *Wallet) SignMessage(message []byte) (string, error) {
	sig, err := w.key.SignMessage(message)
	if err != nil {
		return "", err
	}
	return sig.Hex(), nil
}

// Encrypt serialises the wallet as keystore JSON.
func (w *Wallet) Encrypt(password string, opts jsonwallet.EncryptOptions) (string, error) {
	ka := jsonwallet.KeystoreAccount{
		Address:    w.Address(),
		PrivateKey: w.key.PrivateKey(),
		Curve:      w.key.Curve(),
		Alias:      w.alias,
		Mnemonic:   w.Mnemonic(),
	}
	if w.account != nil {
		ka.Account = w.account.String()
	}
	return jsonwallet.Encrypt(ka, password, opts)
}
