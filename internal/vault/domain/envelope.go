package domain

import "time"

// EnvelopeSchemaVersion is the current on-disk schema version for EnvelopeBlob.
const EnvelopeSchemaVersion = 1

// EnvelopeBlob is the record a BlobStore persists under an Identifier. MainCT
// tracks the live secrets and is rewritten on every mutation; RecoveryCT, when
// present, is a snapshot of the InternalPayload as it existed at registration
// time (or at the last rotation) and is never updated by save_secret or
// delete_secret: rewriting it on every update would require holding the
// recovery code in memory for the session's lifetime.
type EnvelopeBlob struct {
	Version    int
	ID         Identifier
	Salt       Salt
	MainCT     []byte
	RecoveryCT []byte // nil means no recovery capability
	UpdatedAt  time.Time
}

// HasRecovery reports whether this envelope carries a recovery wrapping.
func (e EnvelopeBlob) HasRecovery() bool {
	return len(e.RecoveryCT) > 0
}
