package domain

import "time"

// InternalPayload is the plaintext an envelope's AEAD layer protects. It is
// never persisted on its own; only AEAD(InternalPayload, ...) is.
//
// CreatedAt is fixed at registration and never rewritten; ModifiedAt tracks
// the last secret mutation instead, so the two never collapse into one
// ambiguous timestamp.
type InternalPayload struct {
	ID         Identifier
	Wrapped    WrappedSecret
	Salt       Salt
	Secrets    map[string]string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Clone returns a deep copy of the payload so that mutating the returned
// value (or the Secrets map within it) can never reach back into a cached
// copy held elsewhere (e.g. a Session).
func (p InternalPayload) Clone() InternalPayload {
	secrets := make(map[string]string, len(p.Secrets))
	for k, v := range p.Secrets {
		secrets[k] = v
	}

	salt := make(Salt, len(p.Salt))
	copy(salt, p.Salt)

	wrapped := make(WrappedSecret, len(p.Wrapped))
	copy(wrapped, p.Wrapped)

	return InternalPayload{
		ID:         p.ID,
		Wrapped:    wrapped,
		Salt:       salt,
		Secrets:    secrets,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	}
}
