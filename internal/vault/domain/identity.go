package domain

// Identifier is the opaque primary key for an identity: a deterministic
// function of its Ed25519 public key, assigned by the crypto provider at
// registration (see CryptoProvider.identity_id). The engine never interprets
// its contents, only equality.
type Identifier string

// Salt is the 16 random bytes generated once at registration and used for
// every subsequent Argon2id derivation of the session key for this identity.
type Salt []byte

// SessionKey is the 32-byte Argon2id output used only to wrap and unwrap the
// private key material. It is never persisted and never used as the
// envelope's AEAD key directly.
type SessionKey []byte

// WrappedSecret is the opaque ChaCha20-Poly1305 output produced by
// CryptoProvider.export_wrapped: nonce(12) || ciphertext || tag(16). It is
// reversible only with the SessionKey it was wrapped under.
type WrappedSecret []byte
