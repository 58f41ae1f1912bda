// Package domain defines the core data model and error taxonomy for the
// encrypted identity vault: the identity, its envelope, the session that
// holds decrypted material, and the distinct failure modes a caller must be
// able to tell apart without ever learning why an AEAD decryption failed.
package domain

import (
	"github.com/allisson/vaultcore/internal/errors"
)

// Engine error kinds. Each wraps one of the package-level sentinels in
// internal/errors so callers can still use errors.Is against the coarse
// category while the engine exposes the fine-grained kind below.
var (
	// ErrInitialization indicates the engine was never initialized, or the
	// crypto provider failed init.
	ErrInitialization = errors.Wrap(errors.ErrInvalidInput, "engine not initialized")

	// ErrAuthenticationFailed indicates a wrong password, a wrong recovery
	// code, or an unknown identity. Wrong password and tampered ciphertext
	// are deliberately indistinguishable at this boundary.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrNotAuthenticated indicates the operation requires an unlocked
	// session and none is established.
	ErrNotAuthenticated = errors.Wrap(errors.ErrUnauthorized, "not authenticated")

	// ErrIntegrity indicates the envelope decrypted successfully but the
	// inner payload's id does not match the key it was stored under.
	ErrIntegrity = errors.Wrap(errors.ErrInvalidInput, "envelope integrity violation")

	// ErrCorruptData indicates the envelope decrypted successfully but the
	// inner payload could not be parsed.
	ErrCorruptData = errors.Wrap(errors.ErrInvalidInput, "corrupt payload")

	// ErrRecoveryUnavailable indicates recovery was requested but the
	// envelope carries no recovery_ct.
	ErrRecoveryUnavailable = errors.Wrap(errors.ErrInvalidInput, "recovery unavailable")

	// ErrCrypto indicates a crypto provider primitive failed unexpectedly
	// (not a wrong-password/tampered-ciphertext case, which is
	// ErrAuthenticationFailed instead).
	ErrCrypto = errors.Wrap(errors.ErrInvalidInput, "crypto provider failure")

	// ErrStorage indicates a blob store operation failed.
	ErrStorage = errors.Wrap(errors.ErrInvalidInput, "storage failure")

	// ErrDisposed indicates the engine has already been disposed.
	ErrDisposed = errors.Wrap(errors.ErrInvalidInput, "engine disposed")
)
