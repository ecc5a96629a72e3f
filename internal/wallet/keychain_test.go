package wallet_test

import (
	"testing"

	"github.com/Mohsinsiddi/hethers/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeychain(t *testing.T, kc wallet.Keychain) {
	t.Helper()

	ref, err := kc.Store("signer", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, wallet.PassphraseRef("signer"), ref)

	got, err := kc.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	// overwrite
	_, err = kc.Store("signer", "other")
	require.NoError(t, err)
	got, err = kc.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "other", got)

	require.NoError(t, kc.Delete(ref))
	_, err = kc.Retrieve(ref)
	assert.ErrorIs(t, err, wallet.ErrPassphraseNotFound)

	assert.NoError(t, kc.Delete(ref))
}

func TestInMemoryKeychain(t *testing.T) {
	testKeychain(t, wallet.NewInMemoryKeychain())
}

func TestFileKeychain(t *testing.T) {
	kc, err := wallet.NewFileKeychain(t.TempDir(), "unlock")
	require.NoError(t, err)
	testKeychain(t, kc)
}

func TestPassphraseRef(t *testing.T) {
	assert.Equal(t, "hethers.main", wallet.PassphraseRef("main"))
}
