// Package cryptoport defines the CryptoProvider port: the boundary between
// the vault engine and whatever concrete cryptographic backend a host
// chooses to wire in (the reference implementation in this package, a
// hardware-backed enclave, a WASM binding, etc). The engine never imports a
// concrete backend directly, only this interface.
package cryptoport

import (
	"errors"

	"github.com/allisson/vaultcore/internal/vault/domain"
)

// Handle is an opaque reference to provider-owned identity key material. The
// engine carries Handle values around but never reads through one itself;
// every operation on the underlying key goes back through the Provider.
type Handle uint64

// Sentinel errors a Provider implementation returns. These are intentionally
// coarse: a caller distinguishing DecryptFailed from, say, a malformed blob
// would reintroduce the wrong-password/tampered-ciphertext oracle the engine
// is required to close off.
var (
	// ErrUnsupportedEnvironment is returned by Init when the host environment
	// cannot support the provider (missing CSPRNG, missing hardware feature).
	ErrUnsupportedEnvironment = errors.New("cryptoport: unsupported environment")

	// ErrDecryptFailed covers both a wrong key and a tampered/corrupt blob.
	// Callers must not attempt to tell these apart.
	ErrDecryptFailed = errors.New("cryptoport: decrypt failed")

	// ErrUnknownHandle is returned when an operation is given a Handle the
	// provider has no record of, including one already dropped.
	ErrUnknownHandle = errors.New("cryptoport: unknown handle")
)

// Provider is the CryptoProvider port. Every method may be called
// concurrently; implementations are responsible for their own locking.
type Provider interface {
	// Init prepares the provider for use. Must be called before any other
	// method and must be idempotent.
	Init() error

	// Random returns n cryptographically random bytes.
	Random(n int) ([]byte, error)

	// DeriveKey runs Argon2id over password and salt. The same
	// (password, salt) pair always yields the same output on a given
	// provider build.
	DeriveKey(password string, salt domain.Salt) (domain.SessionKey, error)

	// AEADSeal derives a fresh internal key from password (its own embedded
	// salt, not the caller's), encrypts plaintext with XChaCha20-Poly1305,
	// and returns a self-describing blob.
	AEADSeal(plaintext []byte, password string) ([]byte, error)

	// AEADOpen inverts AEADSeal. Returns ErrDecryptFailed for both a wrong
	// password and a tampered blob.
	AEADOpen(blob []byte, password string) ([]byte, error)

	// NewIdentity generates a fresh Ed25519 keypair and returns a handle to
	// it. The private key never leaves the provider's keeping.
	NewIdentity() (Handle, error)

	// IdentityID returns the deterministic identifier for handle's public key.
	IdentityID(handle Handle) (domain.Identifier, error)

	// IdentityPublicKey returns the 32-byte Ed25519 public key for handle.
	IdentityPublicKey(handle Handle) ([]byte, error)

	// ExportWrapped wraps handle's private key material under sessionKey
	// with ChaCha20-Poly1305, returning nonce || ciphertext || tag.
	ExportWrapped(handle Handle, sessionKey domain.SessionKey) (domain.WrappedSecret, error)

	// RestoreFromWrapped inverts ExportWrapped, registering a fresh handle
	// for the recovered key. Returns ErrDecryptFailed on a wrong session key
	// or a tampered wrapped blob.
	RestoreFromWrapped(wrapped domain.WrappedSecret, sessionKey domain.SessionKey) (Handle, error)

	// Sign produces a 64-byte Ed25519 signature over data using handle's
	// private key.
	Sign(handle Handle, data []byte) ([]byte, error)

	// Drop wipes and releases handle's key material. Safe to call more than
	// once for the same handle.
	Drop(handle Handle)
}
