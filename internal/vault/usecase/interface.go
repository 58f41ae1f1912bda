// Package usecase implements VaultEngine: the facade that orchestrates
// IdentityKeyring, SessionState, EnvelopeCodec, the CryptoProvider port and
// the BlobStore port into the register/login/recover/secret lifecycle.
package usecase

import "context"

// RegisterResult is returned by a successful Register call. RecoveryCode is
// surfaced exactly once, here, and is never persisted or logged afterward.
type RegisterResult struct {
	ID           string
	RecoveryCode string
}

// LoginResult is returned by a successful Login call.
type LoginResult struct {
	ID        string
	PublicKey []byte
}

// RecoverRequest carries the inputs to Recover. ID selects which stored
// identity to recover when more than one exists; left empty, the same
// resolution Login uses applies. Rotate requests a fresh
// recovery code, invalidating the one presented in this call.
type RecoverRequest struct {
	RecoveryCode string
	NewPassword  string
	ID           string
	Rotate       bool
}

// RecoverResult is returned by a successful Recover call. NewRecoveryCode is
// empty unless Rotate was requested.
type RecoverResult struct {
	ID              string
	NewRecoveryCode string
}

// Engine is the VaultEngine facade: the single entry point a host
// application or CLI binds against.
type Engine interface {
	// Init prepares the crypto provider and classifies the engine's starting
	// state from the blob store's current contents. Idempotent.
	Init(ctx context.Context) error

	// Register creates a brand-new identity protected by password, persists
	// it, and establishes an authenticated session for it.
	Register(ctx context.Context, password string) (RegisterResult, error)

	// Login authenticates against a stored identity. id may be empty to
	// select the first identity the blob store lists.
	Login(ctx context.Context, password, id string) (LoginResult, error)

	// Recover re-authenticates using a recovery code instead of the
	// password, re-sealing the envelope under a new password. It never
	// establishes a session itself. The recovered payload is the
	// registration-time snapshot: secrets saved after registration are not
	// part of it and are lost on recovery.
	Recover(ctx context.Context, req RecoverRequest) (RecoverResult, error)

	// Lock tears down the current session without disposing the engine.
	// Idempotent.
	Lock(ctx context.Context)

	// IsAuthenticated reports whether a session is currently established.
	IsAuthenticated() bool

	// GetID returns the authenticated identity's id.
	GetID() (string, error)

	// ListStoredIDs returns every identity id known to the blob store.
	ListStoredIDs(ctx context.Context) ([]string, error)

	// Sign produces a 64-byte Ed25519 signature over data using the
	// authenticated identity's private key.
	Sign(ctx context.Context, data []byte) ([]byte, error)

	// SaveSecret stores value under key in the authenticated identity's vault.
	SaveSecret(ctx context.Context, key, value string) error

	// GetSecret returns the value stored under key, or ("", false, nil) if absent.
	GetSecret(ctx context.Context, key string) (string, bool, error)

	// DeleteSecret removes key from the authenticated identity's vault.
	DeleteSecret(ctx context.Context, key string) error

	// ListSecretKeys returns every key currently stored in the authenticated
	// identity's vault.
	ListSecretKeys(ctx context.Context) ([]string, error)

	// Dispose locks the engine and marks it permanently unusable.
	// Idempotent.
	Dispose(ctx context.Context) error
}
