// Package codec implements canonical serialization between the vault's
// in-memory InternalPayload and the bytes an AEAD primitive actually
// protects, plus construction of the EnvelopeBlob that wraps those bytes for
// storage.
package codec

import (
	"encoding/json"
	"time"

	"github.com/allisson/vaultcore/internal/vault/domain"
)

// wirePayload mirrors domain.InternalPayload field-for-field.
// Keeping a separate wire type (rather than tagging InternalPayload
// directly) means a future change to the in-memory shape cannot silently
// change the wire format underneath already-persisted envelopes.
type wirePayload struct {
	ID         string            `json:"id"`
	Wrapped    []byte            `json:"wrapped"`
	Salt       []byte            `json:"salt"`
	Secrets    map[string]string `json:"secrets"`
	CreatedAt  int64             `json:"created_at"`
	ModifiedAt int64             `json:"modified_at"`
}

// Codec serializes and parses InternalPayload values and builds EnvelopeBlob
// records. It holds no state; a zero value is ready to use.
type Codec struct{}

// New returns a ready-to-use Codec.
func New() *Codec {
	return &Codec{}
}

// SerializePayload produces a canonical UTF-8 byte sequence for payload such
// that ParsePayload(SerializePayload(p)) reproduces p for every well-formed
// p. Timestamps are truncated to millisecond precision on the way out so
// that the round-trip is exact rather than merely equal modulo monotonic
// clock reading.
func (c *Codec) SerializePayload(payload domain.InternalPayload) ([]byte, error) {
	wire := wirePayload{
		ID:         string(payload.ID),
		Wrapped:    []byte(payload.Wrapped),
		Salt:       []byte(payload.Salt),
		Secrets:    payload.Secrets,
		CreatedAt:  payload.CreatedAt.UnixMilli(),
		ModifiedAt: payload.ModifiedAt.UnixMilli(),
	}
	if wire.Secrets == nil {
		wire.Secrets = map[string]string{}
	}

	b, err := json.Marshal(wire)
	if err != nil {
		return nil, domain.ErrCorruptData
	}
	return b, nil
}

// ParsePayload is the inverse of SerializePayload. It fails with
// domain.ErrCorruptData if b is not parseable JSON, if a field has the wrong
// JSON type, or if id is missing or empty. Other absent fields decode to
// their zero values; an absent secrets map becomes an empty one.
func (c *Codec) ParsePayload(b []byte) (domain.InternalPayload, error) {
	var wire wirePayload
	if err := json.Unmarshal(b, &wire); err != nil {
		return domain.InternalPayload{}, domain.ErrCorruptData
	}
	if wire.ID == "" {
		return domain.InternalPayload{}, domain.ErrCorruptData
	}
	if wire.Secrets == nil {
		wire.Secrets = map[string]string{}
	}

	return domain.InternalPayload{
		ID:         domain.Identifier(wire.ID),
		Wrapped:    domain.WrappedSecret(wire.Wrapped),
		Salt:       domain.Salt(wire.Salt),
		Secrets:    wire.Secrets,
		CreatedAt:  time.UnixMilli(wire.CreatedAt).UTC(),
		ModifiedAt: time.UnixMilli(wire.ModifiedAt).UTC(),
	}, nil
}

// MakeEnvelope builds an EnvelopeBlob around already-sealed ciphertext,
// stamping the current schema version and update timestamp. recoveryCT may
// be nil when the caller has no recovery capability to attach.
func (c *Codec) MakeEnvelope(id domain.Identifier, salt domain.Salt, mainCT, recoveryCT []byte) domain.EnvelopeBlob {
	return domain.EnvelopeBlob{
		Version:    domain.EnvelopeSchemaVersion,
		ID:         id,
		Salt:       salt,
		MainCT:     mainCT,
		RecoveryCT: recoveryCT,
		UpdatedAt:  time.Now().UTC(),
	}
}
