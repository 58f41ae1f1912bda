package usecase

import (
	"context"
	"testing"

	"github.com/allisson/vaultcore/internal/vault/codec"
	"github.com/allisson/vaultcore/internal/vault/cryptoport"
	"github.com/allisson/vaultcore/internal/vault/domain"
	"github.com/allisson/vaultcore/internal/vault/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testParams keeps Argon2id cheap so the engine's test suite runs quickly.
var testParams = cryptoport.ArgonParams{Time: 1, Memory: 8 * 1024, Threads: 1}

func newTestEngine(t *testing.T) (Engine, context.Context) {
	t.Helper()
	ctx := context.Background()
	provider := cryptoport.NewReferenceProvider(testParams)
	blobStore := store.NewMemoryStore()
	e := New(provider, blobStore, nil)
	require.NoError(t, e.Init(ctx))
	return e, ctx
}

func TestEngine_Init_Idempotent(t *testing.T) {
	e, ctx := newTestEngine(t)
	assert.NoError(t, e.Init(ctx))
	assert.NoError(t, e.Init(ctx))
}

func TestEngine_Register_EstablishesSession(t *testing.T) {
	e, ctx := newTestEngine(t)

	res, err := e.Register(ctx, "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Regexp(t, `^RK-[A-F0-9]{8}-[A-F0-9]{8}-[A-F0-9]{8}-[A-F0-9]{8}$`, res.RecoveryCode)

	assert.True(t, e.IsAuthenticated())

	id, err := e.GetID()
	require.NoError(t, err)
	assert.Equal(t, res.ID, id)

	ids, err := e.ListStoredIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, res.ID)
}

func TestEngine_Lock_ClearsSession(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw1")
	require.NoError(t, err)

	e.Lock(ctx)

	assert.False(t, e.IsAuthenticated())
	_, err = e.GetID()
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestEngine_Lock_Idempotent(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw1")
	require.NoError(t, err)

	e.Lock(ctx)
	assert.NotPanics(t, func() { e.Lock(ctx) })
}

// Scenario 1: Register-login-read.
func TestEngine_Scenario_RegisterLoginRead(t *testing.T) {
	e, ctx := newTestEngine(t)

	reg, err := e.Register(ctx, "pw1")
	require.NoError(t, err)

	require.NoError(t, e.SaveSecret(ctx, "k", "v"))

	e.Lock(ctx)

	login, err := e.Login(ctx, "pw1", "")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, login.ID)
	assert.Len(t, login.PublicKey, 32)

	v, ok, err := e.GetSecret(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

// Scenario 2: Wrong password.
func TestEngine_Scenario_WrongPassword(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw1")
	require.NoError(t, err)
	e.Lock(ctx)

	_, err = e.Login(ctx, "pw2", "")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.False(t, e.IsAuthenticated())
}

// Scenario 3: Recovery without rotation.
func TestEngine_Scenario_RecoveryWithoutRotation(t *testing.T) {
	e, ctx := newTestEngine(t)
	reg, err := e.Register(ctx, "pw1")
	require.NoError(t, err)
	e.Lock(ctx)

	rec, err := e.Recover(ctx, RecoverRequest{RecoveryCode: reg.RecoveryCode, NewPassword: "pw2"})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, rec.ID)
	assert.Empty(t, rec.NewRecoveryCode)

	_, err = e.Login(ctx, "pw2", "")
	require.NoError(t, err)
	e.Lock(ctx)

	_, err = e.Login(ctx, "pw1", "")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

// Scenario 4: Recovery with rotation.
func TestEngine_Scenario_RecoveryWithRotation(t *testing.T) {
	e, ctx := newTestEngine(t)
	reg, err := e.Register(ctx, "pw1")
	require.NoError(t, err)

	rec1, err := e.Recover(ctx, RecoverRequest{RecoveryCode: reg.RecoveryCode, NewPassword: "pw2", Rotate: true})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, rec1.ID)
	require.NotEmpty(t, rec1.NewRecoveryCode)

	_, err = e.Recover(ctx, RecoverRequest{RecoveryCode: reg.RecoveryCode, NewPassword: "pw3"})
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)

	rec2, err := e.Recover(ctx, RecoverRequest{RecoveryCode: rec1.NewRecoveryCode, NewPassword: "pw3"})
	require.NoError(t, err)
	assert.Equal(t, reg.ID, rec2.ID)
}

// Scenario 5: Integrity violation. Constructs an envelope whose decrypted
// inner id differs from the key it is stored under.
func TestEngine_Scenario_IntegrityViolation(t *testing.T) {
	provider := cryptoport.NewReferenceProvider(testParams)
	require.NoError(t, provider.Init())
	blobStore := store.NewMemoryStore()
	e := New(provider, blobStore, nil)
	ctx := context.Background()
	require.NoError(t, e.Init(ctx))

	reg, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	e.Lock(ctx)

	envelope, ok, err := blobStore.Get(ctx, domain.Identifier(reg.ID))
	require.NoError(t, err)
	require.True(t, ok)

	plaintext, err := provider.AEADOpen(envelope.MainCT, "pw")
	require.NoError(t, err)

	c := codec.New()
	payload, err := c.ParsePayload(plaintext)
	require.NoError(t, err)
	payload.ID = domain.Identifier("did:vault:someone-else")

	forgedPlaintext, err := c.SerializePayload(payload)
	require.NoError(t, err)
	forgedCT, err := provider.AEADSeal(forgedPlaintext, "pw")
	require.NoError(t, err)

	envelope.MainCT = forgedCT
	require.NoError(t, blobStore.Put(ctx, domain.Identifier(reg.ID), envelope))

	_, err = e.Login(ctx, "pw", reg.ID)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

// Scenario 6: Dispose finality.
func TestEngine_Scenario_DisposeFinality(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)

	require.NoError(t, e.Dispose(ctx))

	_, err = e.Login(ctx, "pw", "")
	assert.ErrorIs(t, err, domain.ErrDisposed)
}

func TestEngine_Dispose_Idempotent(t *testing.T) {
	e, ctx := newTestEngine(t)
	require.NoError(t, e.Dispose(ctx))
	assert.NoError(t, e.Dispose(ctx))
}

func TestEngine_SaveSecret_Overwrite(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)

	require.NoError(t, e.SaveSecret(ctx, "k", "v1"))
	require.NoError(t, e.SaveSecret(ctx, "k", "v2"))

	v, ok, err := e.GetSecret(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestEngine_SaveSecret_PersistsAcrossLogin(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	require.NoError(t, e.SaveSecret(ctx, "k", "v"))

	e.Lock(ctx)
	_, err = e.Login(ctx, "pw", "")
	require.NoError(t, err)

	v, ok, err := e.GetSecret(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestEngine_DeleteSecret(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	require.NoError(t, e.SaveSecret(ctx, "k", "v"))

	require.NoError(t, e.DeleteSecret(ctx, "k"))

	_, ok, err := e.GetSecret(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_ListSecretKeys(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	require.NoError(t, e.SaveSecret(ctx, "a", "1"))
	require.NoError(t, e.SaveSecret(ctx, "b", "2"))

	keys, err := e.ListSecretKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestEngine_Sign_RequiresSession(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Sign(ctx, []byte("data"))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestEngine_Sign_Works(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)

	sig, err := e.Sign(ctx, []byte("data"))
	require.NoError(t, err)
	assert.Len(t, sig, 64)
}

func TestEngine_LockedOperations_RequireAuthentication(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	e.Lock(ctx)

	err = e.SaveSecret(ctx, "k", "v")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, _, err = e.GetSecret(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	err = e.DeleteSecret(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = e.Sign(ctx, []byte("x"))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestEngine_Login_NoStoredIdentities(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Login(ctx, "pw", "")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestEngine_Login_UnknownID(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	e.Lock(ctx)

	_, err = e.Login(ctx, "pw", "did:vault:does-not-exist")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestEngine_Recover_NoRecoveryCapability(t *testing.T) {
	provider := cryptoport.NewReferenceProvider(testParams)
	require.NoError(t, provider.Init())
	blobStore := store.NewMemoryStore()
	e := New(provider, blobStore, nil)
	ctx := context.Background()
	require.NoError(t, e.Init(ctx))

	reg, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	e.Lock(ctx)

	envelope, ok, err := blobStore.Get(ctx, domain.Identifier(reg.ID))
	require.NoError(t, err)
	require.True(t, ok)
	envelope.RecoveryCT = nil
	require.NoError(t, blobStore.Put(ctx, domain.Identifier(reg.ID), envelope))

	_, err = e.Recover(ctx, RecoverRequest{RecoveryCode: "RK-AAAAAAAA-AAAAAAAA-AAAAAAAA-AAAAAAAA", NewPassword: "pw2", ID: reg.ID})
	assert.ErrorIs(t, err, domain.ErrRecoveryUnavailable)
}

func TestEngine_Recover_MalformedCode(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	e.Lock(ctx)

	_, err = e.Recover(ctx, RecoverRequest{RecoveryCode: "not-a-recovery-code", NewPassword: "pw2"})
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestEngine_TamperedMainCT_LoginFailsAuthNotCorrupt(t *testing.T) {
	provider := cryptoport.NewReferenceProvider(testParams)
	require.NoError(t, provider.Init())
	blobStore := store.NewMemoryStore()
	e := New(provider, blobStore, nil)
	ctx := context.Background()
	require.NoError(t, e.Init(ctx))

	reg, err := e.Register(ctx, "pw")
	require.NoError(t, err)
	e.Lock(ctx)

	envelope, ok, err := blobStore.Get(ctx, domain.Identifier(reg.ID))
	require.NoError(t, err)
	require.True(t, ok)

	tampered := append([]byte(nil), envelope.MainCT...)
	tampered[len(tampered)-1] ^= 0xFF
	envelope.MainCT = tampered
	require.NoError(t, blobStore.Put(ctx, domain.Identifier(reg.ID), envelope))

	_, err = e.Login(ctx, "pw", reg.ID)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
	assert.NotErrorIs(t, err, domain.ErrCorruptData)
}
