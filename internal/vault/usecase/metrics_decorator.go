package usecase

import (
	"context"
	"time"

	"github.com/allisson/vaultcore/internal/metrics"
)

// engineWithMetrics decorates Engine with business-metrics instrumentation,
// one counter/histogram pair per operation, labeled by outcome.
type engineWithMetrics struct {
	next    Engine
	metrics metrics.BusinessMetrics
}

var _ Engine = (*engineWithMetrics)(nil)

// NewEngineWithMetrics wraps engine so every operation records a
// metrics.BusinessMetrics count and duration under the "vault" domain.
func NewEngineWithMetrics(engine Engine, m metrics.BusinessMetrics) Engine {
	return &engineWithMetrics{next: engine, metrics: m}
}

const metricsDomain = "vault"

func (e *engineWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	e.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (e *engineWithMetrics) Init(ctx context.Context) error {
	start := time.Now()
	err := e.next.Init(ctx)
	e.record(ctx, "init", start, err)
	return err
}

func (e *engineWithMetrics) Register(ctx context.Context, password string) (RegisterResult, error) {
	start := time.Now()
	result, err := e.next.Register(ctx, password)
	e.record(ctx, "register", start, err)
	return result, err
}

func (e *engineWithMetrics) Login(ctx context.Context, password, id string) (LoginResult, error) {
	start := time.Now()
	result, err := e.next.Login(ctx, password, id)
	e.record(ctx, "login", start, err)
	return result, err
}

func (e *engineWithMetrics) Recover(ctx context.Context, req RecoverRequest) (RecoverResult, error) {
	start := time.Now()
	result, err := e.next.Recover(ctx, req)
	e.record(ctx, "recover", start, err)
	return result, err
}

func (e *engineWithMetrics) Lock(ctx context.Context) {
	start := time.Now()
	e.next.Lock(ctx)
	e.record(ctx, "lock", start, nil)
}

func (e *engineWithMetrics) IsAuthenticated() bool {
	return e.next.IsAuthenticated()
}

func (e *engineWithMetrics) GetID() (string, error) {
	return e.next.GetID()
}

func (e *engineWithMetrics) ListStoredIDs(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := e.next.ListStoredIDs(ctx)
	e.record(ctx, "list_stored_ids", start, err)
	return ids, err
}

func (e *engineWithMetrics) Sign(ctx context.Context, data []byte) ([]byte, error) {
	start := time.Now()
	sig, err := e.next.Sign(ctx, data)
	e.record(ctx, "sign", start, err)
	return sig, err
}

func (e *engineWithMetrics) SaveSecret(ctx context.Context, key, value string) error {
	start := time.Now()
	err := e.next.SaveSecret(ctx, key, value)
	e.record(ctx, "save_secret", start, err)
	return err
}

func (e *engineWithMetrics) GetSecret(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := e.next.GetSecret(ctx, key)
	e.record(ctx, "get_secret", start, err)
	return value, ok, err
}

func (e *engineWithMetrics) DeleteSecret(ctx context.Context, key string) error {
	start := time.Now()
	err := e.next.DeleteSecret(ctx, key)
	e.record(ctx, "delete_secret", start, err)
	return err
}

func (e *engineWithMetrics) ListSecretKeys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := e.next.ListSecretKeys(ctx)
	e.record(ctx, "list_secret_keys", start, err)
	return keys, err
}

func (e *engineWithMetrics) Dispose(ctx context.Context) error {
	start := time.Now()
	err := e.next.Dispose(ctx)
	e.record(ctx, "dispose", start, err)
	return err
}
