package keyring

import (
	"testing"

	"github.com/allisson/vaultcore/internal/vault/cryptoport"
	"github.com/allisson/vaultcore/internal/vault/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *cryptoport.ReferenceProvider {
	t.Helper()
	p := cryptoport.NewReferenceProvider(cryptoport.ArgonParams{Time: 1, Memory: 8 * 1024, Threads: 1})
	require.NoError(t, p.Init())
	return p
}

func TestKeyring_Forwarding(t *testing.T) {
	p := newProvider(t)
	handle, err := p.NewIdentity()
	require.NoError(t, err)

	kr := New(p, handle)

	id, err := kr.ID()
	require.NoError(t, err)
	assert.Contains(t, string(id), "did:vault:")

	pub, err := kr.PublicKey()
	require.NoError(t, err)
	assert.Len(t, pub, 32)

	sig, err := kr.Sign([]byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig, 64)

	sessionKey, err := p.DeriveKey("pw", domain.Salt{1, 2, 3, 4})
	require.NoError(t, err)
	wrapped, err := kr.ExportWrapped(sessionKey)
	require.NoError(t, err)
	assert.NotEmpty(t, wrapped)
}

func TestKeyring_Drop_DisablesFurtherUse(t *testing.T) {
	p := newProvider(t)
	handle, err := p.NewIdentity()
	require.NoError(t, err)
	kr := New(p, handle)

	kr.Drop()

	_, err = kr.ID()
	assert.ErrorIs(t, err, domain.ErrDisposed)
	_, err = kr.PublicKey()
	assert.ErrorIs(t, err, domain.ErrDisposed)
	_, err = kr.Sign([]byte("x"))
	assert.ErrorIs(t, err, domain.ErrDisposed)
}

func TestKeyring_Drop_Idempotent(t *testing.T) {
	p := newProvider(t)
	handle, err := p.NewIdentity()
	require.NoError(t, err)
	kr := New(p, handle)

	kr.Drop()
	assert.NotPanics(t, func() { kr.Drop() })
}
