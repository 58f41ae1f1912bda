package cryptoport

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/allisson/vaultcore/internal/vault/domain"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// referenceMagic prefixes every AEADSeal blob. Exactly 13 bytes, per the
// wire format.
const referenceMagic = "VLTCOREAEADv1"

const (
	internalSaltSize = 16
	xchachaNonceSize = 24
	sessionKeySize   = 32
)

// ArgonParams configures the Argon2id derivation this provider performs for
// every DeriveKey and AEADSeal/AEADOpen call. Values are a build-time choice
// documented here rather than negotiated at runtime.
type ArgonParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultArgonParams mirrors widely used interactive-login Argon2id guidance:
// 3 passes, 64 MiB, 4 lanes.
var DefaultArgonParams = ArgonParams{Time: 3, Memory: 64 * 1024, Threads: 4}

type identityRecord struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// ReferenceProvider is a pure-Go CryptoProvider backed by
// golang.org/x/crypto's Argon2id and ChaCha20-Poly1305/XChaCha20-Poly1305,
// and the standard library's Ed25519. It keeps identity key material behind
// an opaque Handle table rather than returning raw key bytes to callers.
type ReferenceProvider struct {
	params ArgonParams

	mu        sync.Mutex
	nextHandl Handle
	handles   map[Handle]*identityRecord
	ready     bool
}

var _ Provider = (*ReferenceProvider)(nil)

// NewReferenceProvider constructs a provider with the given Argon2id
// parameters. Call Init before first use.
func NewReferenceProvider(params ArgonParams) *ReferenceProvider {
	return &ReferenceProvider{
		params:  params,
		handles: make(map[Handle]*identityRecord),
	}
}

func (p *ReferenceProvider) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
	return nil
}

func (p *ReferenceProvider) Random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("cryptoport: random read failed: %w", err)
	}
	return b, nil
}

func (p *ReferenceProvider) DeriveKey(password string, salt domain.Salt) (domain.SessionKey, error) {
	key := argon2.IDKey([]byte(password), salt, p.params.Time, p.params.Memory, p.params.Threads, sessionKeySize)
	return domain.SessionKey(key), nil
}

func (p *ReferenceProvider) AEADSeal(plaintext []byte, password string) ([]byte, error) {
	internalSalt, err := p.Random(internalSaltSize)
	if err != nil {
		return nil, err
	}
	key := argon2.IDKey([]byte(password), internalSalt, p.params.Time, p.params.Memory, p.params.Threads, chacha20poly1305.KeySize)
	defer domain.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoport: build xchacha20poly1305: %w", err)
	}

	nonce, err := p.Random(xchachaNonceSize)
	if err != nil {
		return nil, err
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	blob := make([]byte, 0, len(referenceMagic)+internalSaltSize+xchachaNonceSize+len(ciphertext))
	blob = append(blob, []byte(referenceMagic)...)
	blob = append(blob, internalSalt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return blob, nil
}

func (p *ReferenceProvider) AEADOpen(blob []byte, password string) ([]byte, error) {
	minLen := len(referenceMagic) + internalSaltSize + xchachaNonceSize
	if len(blob) < minLen || string(blob[:len(referenceMagic)]) != referenceMagic {
		return nil, ErrDecryptFailed
	}

	rest := blob[len(referenceMagic):]
	internalSalt := rest[:internalSaltSize]
	rest = rest[internalSaltSize:]
	nonce := rest[:xchachaNonceSize]
	ciphertext := rest[xchachaNonceSize:]

	key := argon2.IDKey([]byte(password), internalSalt, p.params.Time, p.params.Memory, p.params.Threads, chacha20poly1305.KeySize)
	defer domain.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("cryptoport: build xchacha20poly1305: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

func (p *ReferenceProvider) NewIdentity() (Handle, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return 0, fmt.Errorf("cryptoport: generate ed25519 key: %w", err)
	}
	return p.register(&identityRecord{private: private, public: public}), nil
}

func (p *ReferenceProvider) register(rec *identityRecord) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextHandl++
	h := p.nextHandl
	p.handles[h] = rec
	return h
}

func (p *ReferenceProvider) lookup(h Handle) (*identityRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.handles[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return rec, nil
}

func (p *ReferenceProvider) IdentityID(handle Handle) (domain.Identifier, error) {
	rec, err := p.lookup(handle)
	if err != nil {
		return "", err
	}
	return domain.Identifier("did:vault:" + base58.Encode(rec.public)), nil
}

func (p *ReferenceProvider) IdentityPublicKey(handle Handle) ([]byte, error) {
	rec, err := p.lookup(handle)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(rec.public))
	copy(out, rec.public)
	return out, nil
}

func (p *ReferenceProvider) ExportWrapped(handle Handle, sessionKey domain.SessionKey) (domain.WrappedSecret, error) {
	rec, err := p.lookup(handle)
	if err != nil {
		return nil, err
	}
	if len(sessionKey) != sessionKeySize {
		return nil, fmt.Errorf("cryptoport: session key must be %d bytes", sessionKeySize)
	}

	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("cryptoport: build chacha20poly1305: %w", err)
	}

	nonce, err := p.Random(chacha20poly1305.NonceSize)
	if err != nil {
		return nil, err
	}

	seed := rec.private.Seed()
	ciphertext := aead.Seal(nil, nonce, seed, nil)

	wrapped := make([]byte, 0, len(nonce)+len(ciphertext))
	wrapped = append(wrapped, nonce...)
	wrapped = append(wrapped, ciphertext...)
	return domain.WrappedSecret(wrapped), nil
}

func (p *ReferenceProvider) RestoreFromWrapped(wrapped domain.WrappedSecret, sessionKey domain.SessionKey) (Handle, error) {
	if len(sessionKey) != sessionKeySize {
		return 0, ErrDecryptFailed
	}
	if len(wrapped) < chacha20poly1305.NonceSize {
		return 0, ErrDecryptFailed
	}

	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return 0, fmt.Errorf("cryptoport: build chacha20poly1305: %w", err)
	}

	nonce := wrapped[:chacha20poly1305.NonceSize]
	ciphertext := wrapped[chacha20poly1305.NonceSize:]

	seed, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return 0, ErrDecryptFailed
	}
	defer domain.Zero(seed)

	if len(seed) != ed25519.SeedSize {
		return 0, ErrDecryptFailed
	}

	private := ed25519.NewKeyFromSeed(seed)
	public := private.Public().(ed25519.PublicKey)
	return p.register(&identityRecord{private: private, public: public}), nil
}

func (p *ReferenceProvider) Sign(handle Handle, data []byte) ([]byte, error) {
	rec, err := p.lookup(handle)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(rec.private, data), nil
}

func (p *ReferenceProvider) Drop(handle Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.handles[handle]
	if !ok {
		return
	}
	domain.Zero(rec.private)
	delete(p.handles, handle)
}
