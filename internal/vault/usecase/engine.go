package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/vaultcore/internal/vault/codec"
	"github.com/allisson/vaultcore/internal/vault/cryptoport"
	"github.com/allisson/vaultcore/internal/vault/domain"
	"github.com/allisson/vaultcore/internal/vault/keyring"
	"github.com/allisson/vaultcore/internal/vault/session"
	"github.com/allisson/vaultcore/internal/vault/store"
)

// engineState is the VaultEngine's lifecycle state.
type engineState int

const (
	stateUninit engineState = iota
	stateReady
	stateLocked
	stateUnlocked
	stateError
	stateDisposed
)

// engine implements Engine. It holds no business data itself beyond its
// lifecycle state; identity and secret material live in session.State, and
// key material lives behind the cryptoport.Provider's handle table.
type engine struct {
	provider cryptoport.Provider
	store    store.Store
	codec    *codec.Codec
	session  *session.State
	logger   *slog.Logger

	mu        sync.Mutex
	state     engineState
	sessionID string
}

var _ Engine = (*engine)(nil)

// New wires a fresh, uninitialized Engine around provider and blobStore.
// logger may be nil, in which case the engine stays silent. Log lines never
// carry passwords, session keys, recovery codes or secret values: only
// identity ids (public by construction) and per-session correlation ids.
func New(provider cryptoport.Provider, blobStore store.Store, logger *slog.Logger) Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &engine{
		provider: provider,
		store:    blobStore,
		codec:    codec.New(),
		session:  session.New(),
		logger:   logger,
		state:    stateUninit,
	}
}

func (e *engine) getState() engineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engine) setState(s engineState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// newSessionID stamps a fresh UUIDv7 correlation id for an established
// session. The id appears only in log lines, never in the envelope.
func (e *engine) newSessionID() string {
	sid := uuid.Must(uuid.NewV7()).String()
	e.mu.Lock()
	e.sessionID = sid
	e.mu.Unlock()
	return sid
}

func (e *engine) takeSessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	sid := e.sessionID
	e.sessionID = ""
	return sid
}

// requireUsable returns domain.ErrDisposed once the engine has been
// disposed, and domain.ErrInitialization before Init has run successfully.
// Every operation other than Init, IsAuthenticated, Lock and Dispose calls
// this first.
func (e *engine) requireUsable() error {
	switch e.getState() {
	case stateDisposed:
		return domain.ErrDisposed
	case stateUninit:
		return domain.ErrInitialization
	default:
		return nil
	}
}

func (e *engine) Init(ctx context.Context) error {
	if e.getState() == stateDisposed {
		return domain.ErrDisposed
	}
	if e.getState() != stateUninit {
		return nil // idempotent
	}

	if err := e.provider.Init(); err != nil {
		e.setState(stateError)
		return domain.ErrInitialization
	}

	ids, err := e.store.ListIDs(ctx)
	if err != nil {
		e.setState(stateError)
		return domain.ErrStorage
	}

	if len(ids) == 0 {
		e.setState(stateReady)
	} else {
		e.setState(stateLocked)
	}
	return nil
}

func (e *engine) Register(ctx context.Context, password string) (RegisterResult, error) {
	if err := e.requireUsable(); err != nil {
		return RegisterResult{}, err
	}

	handle, err := e.provider.NewIdentity()
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}
	established := false
	defer func() {
		if !established {
			e.provider.Drop(handle)
		}
	}()

	id, err := e.provider.IdentityID(handle)
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}

	saltBytes, err := e.provider.Random(16)
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}
	salt := domain.Salt(saltBytes)

	sessionKey, err := e.provider.DeriveKey(password, salt)
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}
	defer func() {
		if !established {
			domain.Zero(sessionKey)
		}
	}()

	wrapped, err := e.provider.ExportWrapped(handle, sessionKey)
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}

	now := time.Now().UTC()
	payload := domain.InternalPayload{
		ID:         id,
		Wrapped:    wrapped,
		Salt:       salt,
		Secrets:    map[string]string{},
		CreatedAt:  now,
		ModifiedAt: now,
	}

	plaintext, err := e.codec.SerializePayload(payload)
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}

	mainCT, err := e.provider.AEADSeal(plaintext, password)
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}

	recoveryEntropy, err := e.provider.Random(16)
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}
	var recoverySeed [16]byte
	copy(recoverySeed[:], recoveryEntropy)
	recoveryCode := domain.NewRecoveryCode(recoverySeed)

	recoveryCT, err := e.provider.AEADSeal(plaintext, string(recoveryCode))
	if err != nil {
		return RegisterResult{}, domain.ErrCrypto
	}

	envelope := e.codec.MakeEnvelope(id, salt, mainCT, recoveryCT)
	if err := e.store.Put(ctx, id, envelope); err != nil {
		return RegisterResult{}, domain.ErrStorage
	}

	kr := keyring.New(e.provider, handle)
	e.session.Establish(kr, sessionKey, id, password, map[string]string{})
	established = true
	e.setState(stateUnlocked)

	e.logger.Debug("identity registered",
		slog.String("id", string(id)),
		slog.String("session_id", e.newSessionID()),
	)

	return RegisterResult{ID: string(id), RecoveryCode: string(recoveryCode)}, nil
}

// resolveTarget implements the "resolve target" step shared by Login and
// Recover: use the given id verbatim when non-empty, otherwise fall back to
// the first identity the store lists. With several stored identities, which
// one that is follows the store's listing order.
func (e *engine) resolveTarget(ctx context.Context, id string) (domain.Identifier, error) {
	if id != "" {
		return domain.Identifier(id), nil
	}
	ids, err := e.store.ListIDs(ctx)
	if err != nil {
		return "", domain.ErrStorage
	}
	if len(ids) == 0 {
		return "", domain.ErrAuthenticationFailed
	}
	return ids[0], nil
}

func (e *engine) Login(ctx context.Context, password, id string) (LoginResult, error) {
	if err := e.requireUsable(); err != nil {
		return LoginResult{}, err
	}

	target, err := e.resolveTarget(ctx, id)
	if err != nil {
		return LoginResult{}, err
	}

	envelope, ok, err := e.store.Get(ctx, target)
	if err != nil {
		return LoginResult{}, domain.ErrStorage
	}
	if !ok {
		return LoginResult{}, domain.ErrAuthenticationFailed
	}

	plaintext, err := e.provider.AEADOpen(envelope.MainCT, password)
	if err != nil {
		e.logger.Warn("login rejected", slog.String("id", string(target)))
		return LoginResult{}, domain.ErrAuthenticationFailed
	}

	payload, err := e.codec.ParsePayload(plaintext)
	if err != nil {
		e.logger.Warn("login found unparseable payload", slog.String("id", string(target)))
		return LoginResult{}, domain.ErrCorruptData
	}

	if payload.ID != target {
		e.logger.Warn("login found integrity violation", slog.String("id", string(target)))
		return LoginResult{}, domain.ErrIntegrity
	}

	sessionKey, err := e.provider.DeriveKey(password, payload.Salt)
	if err != nil {
		return LoginResult{}, domain.ErrCrypto
	}
	established := false
	defer func() {
		if !established {
			domain.Zero(sessionKey)
		}
	}()

	handle, err := e.provider.RestoreFromWrapped(payload.Wrapped, sessionKey)
	if err != nil {
		return LoginResult{}, domain.ErrAuthenticationFailed
	}
	defer func() {
		if !established {
			e.provider.Drop(handle)
		}
	}()

	pub, err := e.provider.IdentityPublicKey(handle)
	if err != nil {
		return LoginResult{}, domain.ErrCrypto
	}

	kr := keyring.New(e.provider, handle)
	e.session.Establish(kr, sessionKey, target, password, payload.Secrets)
	established = true
	e.setState(stateUnlocked)

	e.logger.Debug("session established",
		slog.String("id", string(target)),
		slog.String("session_id", e.newSessionID()),
	)

	return LoginResult{ID: string(target), PublicKey: pub}, nil
}

func (e *engine) Recover(ctx context.Context, req RecoverRequest) (RecoverResult, error) {
	if err := e.requireUsable(); err != nil {
		return RecoverResult{}, err
	}

	if !domain.RecoveryCode(req.RecoveryCode).Valid() {
		return RecoverResult{}, domain.ErrAuthenticationFailed
	}

	target, err := e.resolveTarget(ctx, req.ID)
	if err != nil {
		return RecoverResult{}, err
	}

	envelope, ok, err := e.store.Get(ctx, target)
	if err != nil {
		return RecoverResult{}, domain.ErrStorage
	}
	if !ok {
		return RecoverResult{}, domain.ErrAuthenticationFailed
	}
	if !envelope.HasRecovery() {
		return RecoverResult{}, domain.ErrRecoveryUnavailable
	}

	plaintext, err := e.provider.AEADOpen(envelope.RecoveryCT, req.RecoveryCode)
	if err != nil {
		e.logger.Warn("recovery rejected", slog.String("id", string(target)))
		return RecoverResult{}, domain.ErrAuthenticationFailed
	}

	if _, err := e.codec.ParsePayload(plaintext); err != nil {
		return RecoverResult{}, domain.ErrCorruptData
	}

	newMainCT, err := e.provider.AEADSeal(plaintext, req.NewPassword)
	if err != nil {
		return RecoverResult{}, domain.ErrCrypto
	}

	newRecoveryCT := envelope.RecoveryCT
	var newRecoveryCode string
	if req.Rotate {
		entropy, err := e.provider.Random(16)
		if err != nil {
			return RecoverResult{}, domain.ErrCrypto
		}
		var seed [16]byte
		copy(seed[:], entropy)
		code := domain.NewRecoveryCode(seed)

		ct, err := e.provider.AEADSeal(plaintext, string(code))
		if err != nil {
			return RecoverResult{}, domain.ErrCrypto
		}
		newRecoveryCT = ct
		newRecoveryCode = string(code)
	}

	envelope.MainCT = newMainCT
	envelope.RecoveryCT = newRecoveryCT
	envelope.UpdatedAt = time.Now().UTC()
	if err := e.store.Put(ctx, target, envelope); err != nil {
		return RecoverResult{}, domain.ErrStorage
	}

	e.logger.Debug("envelope recovered",
		slog.String("id", string(target)),
		slog.Bool("rotated", req.Rotate),
	)

	return RecoverResult{ID: string(target), NewRecoveryCode: newRecoveryCode}, nil
}

func (e *engine) Lock(ctx context.Context) {
	e.session.Clear()

	if sid := e.takeSessionID(); sid != "" {
		e.logger.Debug("session locked", slog.String("session_id", sid))
	}

	if e.getState() == stateDisposed {
		return
	}

	ids, err := e.store.ListIDs(ctx)
	if err == nil && len(ids) == 0 {
		e.setState(stateReady)
	} else {
		e.setState(stateLocked)
	}
}

func (e *engine) IsAuthenticated() bool {
	return e.session.IsAuthenticated()
}

func (e *engine) GetID() (string, error) {
	if err := e.requireUsable(); err != nil {
		return "", err
	}
	id, err := e.session.GetID()
	if err != nil {
		return "", err
	}
	return string(id), nil
}

func (e *engine) ListStoredIDs(ctx context.Context) ([]string, error) {
	if err := e.requireUsable(); err != nil {
		return nil, err
	}
	ids, err := e.store.ListIDs(ctx)
	if err != nil {
		return nil, domain.ErrStorage
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out, nil
}

func (e *engine) Sign(ctx context.Context, data []byte) ([]byte, error) {
	if err := e.requireUsable(); err != nil {
		return nil, err
	}
	client, err := e.session.GetClient()
	if err != nil {
		return nil, err
	}
	return client.Sign(data)
}

// reseal re-decrypts the authenticated session's envelope, overwrites its
// secrets with the session's current cache, and re-seals and persists the
// result. Called after the session cache has already been mutated, per the
// engine's ordering policy: cache-before-store, so a store failure leaves
// the cache ahead of the persisted state until the next login.
func (e *engine) reseal(ctx context.Context) error {
	id, err := e.session.GetID()
	if err != nil {
		return err
	}

	envelope, ok, err := e.store.Get(ctx, id)
	if err != nil {
		return domain.ErrStorage
	}
	if !ok {
		return domain.ErrStorage
	}

	password, err := e.session.GetPassword()
	if err != nil {
		return err
	}

	plaintext, err := e.provider.AEADOpen(envelope.MainCT, password)
	if err != nil {
		return domain.ErrStorage
	}

	payload, err := e.codec.ParsePayload(plaintext)
	if err != nil {
		return domain.ErrCorruptData
	}

	secrets, err := e.session.GetAllSecrets()
	if err != nil {
		return err
	}
	payload.Secrets = secrets
	payload.ModifiedAt = time.Now().UTC()

	newPlaintext, err := e.codec.SerializePayload(payload)
	if err != nil {
		return domain.ErrCrypto
	}

	newCT, err := e.provider.AEADSeal(newPlaintext, password)
	if err != nil {
		return domain.ErrCrypto
	}

	envelope.MainCT = newCT
	envelope.UpdatedAt = time.Now().UTC()
	if err := e.store.Put(ctx, id, envelope); err != nil {
		return domain.ErrStorage
	}
	return nil
}

func (e *engine) SaveSecret(ctx context.Context, key, value string) error {
	if err := e.requireUsable(); err != nil {
		return err
	}
	if !e.session.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := e.session.SetSecret(key, value); err != nil {
		return err
	}
	return e.reseal(ctx)
}

func (e *engine) GetSecret(ctx context.Context, key string) (string, bool, error) {
	if err := e.requireUsable(); err != nil {
		return "", false, err
	}
	return e.session.GetSecret(key)
}

func (e *engine) DeleteSecret(ctx context.Context, key string) error {
	if err := e.requireUsable(); err != nil {
		return err
	}
	if !e.session.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := e.session.DeleteSecret(key); err != nil {
		return err
	}
	return e.reseal(ctx)
}

func (e *engine) ListSecretKeys(ctx context.Context) ([]string, error) {
	if err := e.requireUsable(); err != nil {
		return nil, err
	}
	secrets, err := e.session.GetAllSecrets()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	return keys, nil
}

func (e *engine) Dispose(ctx context.Context) error {
	e.session.Clear()

	if sid := e.takeSessionID(); sid != "" {
		e.logger.Debug("session locked", slog.String("session_id", sid))
	}
	if e.getState() != stateDisposed {
		e.logger.Debug("engine disposed")
	}

	e.setState(stateDisposed)
	return nil
}
