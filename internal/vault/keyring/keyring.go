// Package keyring implements IdentityKeyring, the thin owner of a single
// active crypto provider handle.
package keyring

import (
	"github.com/allisson/vaultcore/internal/vault/cryptoport"
	"github.com/allisson/vaultcore/internal/vault/domain"
)

// Keyring holds exactly one cryptoport.Handle and forwards identity
// operations to the provider that issued it. Beyond the provider and the
// handle it tracks only whether the handle has been dropped; everything else
// is delegated.
type Keyring struct {
	provider cryptoport.Provider
	handle   cryptoport.Handle
	active   bool
}

// New wraps handle, which must have been issued by provider.
func New(provider cryptoport.Provider, handle cryptoport.Handle) *Keyring {
	return &Keyring{provider: provider, handle: handle, active: true}
}

// ID returns the owned identity's identifier.
func (k *Keyring) ID() (domain.Identifier, error) {
	if !k.active {
		return "", domain.ErrDisposed
	}
	id, err := k.provider.IdentityID(k.handle)
	if err != nil {
		return "", domain.ErrCrypto
	}
	return id, nil
}

// PublicKey returns the owned identity's public key.
func (k *Keyring) PublicKey() ([]byte, error) {
	if !k.active {
		return nil, domain.ErrDisposed
	}
	pub, err := k.provider.IdentityPublicKey(k.handle)
	if err != nil {
		return nil, domain.ErrCrypto
	}
	return pub, nil
}

// Sign produces a signature over data using the owned identity's private key.
func (k *Keyring) Sign(data []byte) ([]byte, error) {
	if !k.active {
		return nil, domain.ErrDisposed
	}
	sig, err := k.provider.Sign(k.handle, data)
	if err != nil {
		return nil, domain.ErrCrypto
	}
	return sig, nil
}

// ExportWrapped wraps the owned identity's private key under sessionKey.
func (k *Keyring) ExportWrapped(sessionKey domain.SessionKey) (domain.WrappedSecret, error) {
	if !k.active {
		return nil, domain.ErrDisposed
	}
	wrapped, err := k.provider.ExportWrapped(k.handle, sessionKey)
	if err != nil {
		return nil, domain.ErrCrypto
	}
	return wrapped, nil
}

// Drop wipes the owned handle via the provider. Safe to call more than once.
func (k *Keyring) Drop() {
	if !k.active {
		return
	}
	k.provider.Drop(k.handle)
	k.active = false
}
