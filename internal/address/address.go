// Package address converts between EVM addresses, Hedera account ids and
// key aliases.
package address

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/hethers/internal/errs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	hexAddressRe = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)
	mixedCaseRe  = regexp.MustCompile(`([A-F].*[a-f])|([a-f].*[A-F])`)
)

// AccountID is a Hedera entity id in shard.realm.num form.
type AccountID struct {
	Shard uint64
	Realm uint64
	Num   uint64
}

func (a AccountID) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Shard, a.Realm, a.Num)
}

// IsZero reports whether a is the unset id.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// Address returns the 20-byte "long-zero" EVM form of the id:
// 4-byte shard, 8-byte realm, 8-byte num, all big-endian.
func (a AccountID) Address() common.Address {
	var out common.Address
	binary.BigEndian.PutUint32(out[0:4], uint32(a.Shard))
	binary.BigEndian.PutUint64(out[4:12], a.Realm)
	binary.BigEndian.PutUint64(out[12:20], a.Num)
	return out
}

// ParseAccount parses "shard.realm.num".
func ParseAccount(s string) (AccountID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return AccountID{}, errs.Argument("invalid account", "account", s)
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return AccountID{}, errs.Argument("invalid account", "account", s)
		}
		nums[i] = n
	}
	if nums[0] > math.MaxUint32 {
		return AccountID{}, errs.Argument("invalid account shard", "account", s)
	}
	return AccountID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

// MustParseAccount is ParseAccount for constants; it panics on error.
func MustParseAccount(s string) AccountID {
	a, err := ParseAccount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsAccount reports whether s is a well-formed account id.
func IsAccount(s string) bool {
	_, err := ParseAccount(s)
	return err == nil
}

// GetAddress validates an EVM address and returns its EIP-55 form. Input
// without the 0x prefix is accepted; mixed-case input must carry a correct
// checksum.
func GetAddress(s string) (string, error) {
	if !hexAddressRe.MatchString(s) {
		return "", errs.Argument("invalid address", "address", s)
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	result := common.HexToAddress(s).Hex()
	if mixedCaseRe.MatchString(s[2:]) && result != s {
		return "", errs.Argument("bad address checksum", "address", s)
	}
	return result, nil
}

// IsAddress reports whether GetAddress would accept s.
func IsAddress(s string) bool {
	_, err := GetAddress(s)
	return err == nil
}

// ToAddress accepts an EVM address or a shard.realm.num account id.
func ToAddress(s string) (common.Address, error) {
	if a, err := ParseAccount(s); err == nil {
		return a.Address(), nil
	}
	addr, err := GetAddress(s)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(addr), nil
}

// GetAddressFromAccount returns the checksummed long-zero address of an account id.
func GetAddressFromAccount(account string) (string, error) {
	a, err := ParseAccount(account)
	if err != nil {
		return "", err
	}
	return a.Address().Hex(), nil
}

// GetAccountFromAddress splits an EVM address into its shard.realm.num parts.
func GetAccountFromAddress(addr string) (AccountID, error) {
	checked, err := GetAddress(addr)
	if err != nil {
		return AccountID{}, err
	}
	return AccountFromEVM(common.HexToAddress(checked)), nil
}

// AccountFromEVM splits a 20-byte address into its shard.realm.num parts.
func AccountFromEVM(a common.Address) AccountID {
	return AccountID{
		Shard: uint64(binary.BigEndian.Uint32(a[0:4])),
		Realm: binary.BigEndian.Uint64(a[4:12]),
		Num:   binary.BigEndian.Uint64(a[12:20]),
	}
}

// IsLongZero reports whether a is the EVM form of a shard-0 realm-0 entity
// rather than a key-derived address.
func IsLongZero(a common.Address) bool {
	for _, b := range a[:12] {
		if b != 0 {
			return false
		}
	}
	return true
}

// ComputeAlias returns "0.0.<base64(publicKey)>".
func ComputeAlias(publicKey []byte) string {
	return "0.0." + base64.StdEncoding.EncodeToString(publicKey)
}

// ParseAlias splits an alias into its shard, realm and raw key bytes.
func ParseAlias(alias string) (shard, realm uint64, key []byte, err error) {
	parts := strings.SplitN(alias, ".", 3)
	if len(parts) != 3 {
		return 0, 0, nil, errs.Argument("invalid alias", "alias", alias)
	}
	if shard, err = strconv.ParseUint(parts[0], 10, 32); err != nil {
		return 0, 0, nil, errs.Argument("invalid alias", "alias", alias)
	}
	if realm, err = strconv.ParseUint(parts[1], 10, 64); err != nil {
		return 0, 0, nil, errs.Argument("invalid alias", "alias", alias)
	}
	key, err = base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(key) == 0 {
		return 0, 0, nil, errs.Argument("invalid alias", "alias", alias)
	}
	return shard, realm, key, nil
}

// IsAlias reports whether s parses as an alias.
func IsAlias(s string) bool {
	_, _, _, err := ParseAlias(s)
	return err == nil
}

// AddressFromAlias returns the EVM address implied by a secp256k1 alias. It
// never fails: malformed aliases and aliases of keys with no EVM address
// (ed25519) yield "".
func AddressFromAlias(alias string) string {
	_, _, key, err := ParseAlias(alias)
	if err != nil {
		return ""
	}
	var pub []byte
	switch len(key) {
	case 65:
		pub = key
	case 33:
		pk, err := crypto.DecompressPubkey(key)
		if err != nil {
			return ""
		}
		return crypto.PubkeyToAddress(*pk).Hex()
	default:
		return ""
	}
	pk, err := crypto.UnmarshalPubkey(pub)
	if err != nil {
		return ""
	}
	return crypto.PubkeyToAddress(*pk).Hex()
}
