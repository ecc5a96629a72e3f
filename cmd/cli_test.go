package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/hethers/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardhatAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// runCLI executes the root command in-process against configDir and
// returns what it printed to stdout.
func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r) //nolint:errcheck
		done <- buf.Bytes()
	}()

	rootCmd.SetArgs(append([]string{"--config", configDir}, args...))
	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = stdout
	return string(<-done), runErr
}

// resetFlags clears flag-bound globals; cobra keeps them between runs.
func resetFlags() {
	networkFlag, walletFlag, walletAccount, walletPath = "", "", "", ""
	walletEd25519, walletJSON, walletKeychain, messageHex, keccakHex = false, false, false, false, false
	verifyAddress, abiSource, callABI, eventsABI = "", "", "", ""
	txTo, txValue, txData, txFileChunk, txFileID, txFileKey, txBytecodeFileID, txNode, txMemo, txOut = "", "", "", "", "", "", "", "", "", ""
	txGas = 0
}

func TestCLI_Codec(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "selector", "transfer(address to, uint amount)")
	require.NoError(t, err)
	assert.Contains(t, out, "0xa9059cbb")

	out, err = runCLI(t, dir, "abi", "encode", "transfer(address,uint256)", "0.0.1001", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "0xa9059cbb00000000000000000000000000000000000000000000000000000000000003e9")

	out, err = runCLI(t, dir, "keccak", "--hex", "0x")
	require.NoError(t, err)
	assert.Contains(t, out, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

	out, err = runCLI(t, dir, "address", "from-account", "0.0.1001")
	require.NoError(t, err)
	assert.Contains(t, out, "0.0.1001")
}

func TestCLI_NetworkAndConfig(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "network", "list")
	require.NoError(t, err)
	for _, name := range []string{"mainnet", "testnet", "previewnet", "local", "296"} {
		assert.Contains(t, out, name)
	}

	_, err = runCLI(t, dir, "config", "set", "default_network", "mainnet")
	require.NoError(t, err)
	out, err = runCLI(t, dir, "config", "get", "default_network")
	require.NoError(t, err)
	assert.Equal(t, "mainnet\n", out)

	_, err = runCLI(t, dir, "config", "set", "default_network", "ropsten")
	assert.ErrorContains(t, err, "unknown network")

	_, err = runCLI(t, dir, "--network", "ropsten", "balance", "0.0.98")
	assert.ErrorContains(t, err, `unknown network "ropsten"`)
}

func TestCLI_WalletSignAndTransaction(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPassword, "correct horse battery staple")

	_, err := runCLI(t, dir, "config", "set", "scrypt_n", "1024")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "import", "dev", hardhatKey, "--account", "0.0.1001")
	require.NoError(t, err)
	assert.Contains(t, out, hardhatAddress)

	_, err = runCLI(t, dir, "wallet", "import", "dev", hardhatKey)
	assert.ErrorIs(t, err, wallet.ErrWalletExists)

	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "0.0.1001")

	w, err := wallet.New(hardhatKey)
	require.NoError(t, err)
	sig, err := w.SignMessage([]byte("hello"))
	require.NoError(t, err)

	out, err = runCLI(t, dir, "sign", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, sig)

	out, err = runCLI(t, dir, "verify", "hello", sig, "--address", hardhatAddress)
	require.NoError(t, err)
	assert.Contains(t, out, "signer matches")

	txFile := filepath.Join(dir, "call.tx")
	_, err = runCLI(t, dir, "tx", "sign", "--wallet", "dev",
		"--to", "0.0.98", "--data", "0xa9059cbb", "--gas", "100000", "--out", txFile)
	require.NoError(t, err)
	require.FileExists(t, txFile)

	out, err = runCLI(t, dir, "tx", "decode", "@"+txFile)
	require.NoError(t, err)
	assert.Contains(t, out, "ContractCall")
	assert.Contains(t, out, "0.0.1001@")

	out, err = runCLI(t, dir, "wallet", "export", "dev", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"ciphertext"`)
}
