package resolver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/cache"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/provider"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records map[string]model.DeploymentRecord
	getErr  error
	setErr  error
	gets    int
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]model.DeploymentRecord{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (*model.DeploymentRecord, error) {
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	if rec, ok := s.records[key]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *fakeStore) Set(_ context.Context, key string, rec model.DeploymentRecord, _ time.Duration) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.records[key] = rec
	return nil
}

type fakeProvider struct {
	name  string
	cand  model.Candidate
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) EarliestTransaction(context.Context, string) (model.Candidate, error) {
	p.calls++
	return p.cand, p.err
}

type fakeTimer struct {
	ts    int64
	err   error
	calls int
}

func (f *fakeTimer) BlockTime(context.Context, string) (int64, error) {
	f.calls++
	return f.ts, f.err
}

func int64p(v int64) *int64 { return &v }

func newTestResolver(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	if cfg.Network == "" {
		cfg.Network = model.NetworkDevnet
	}
	if cfg.Selector == nil {
		cfg.Selector = selector.NewSeeded(1)
	}
	if cfg.Times == nil {
		cfg.Times = &fakeTimer{ts: 1650000000}
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func TestResolve_EmptyProgram(t *testing.T) {
	r := newTestResolver(t, Config{
		Providers: []provider.Provider{&fakeProvider{name: "helius"}},
	})

	_, err := r.Resolve(context.Background(), "   ")
	require.Error(t, err)
}

func TestResolve_CacheShortCircuit(t *testing.T) {
	store := newFakeStore()
	cached := model.DeploymentRecord{Signature: "sigCached", Timestamp: 1600000000}
	store.records[model.CacheKey(model.NetworkDevnet, "Prog111")] = cached

	p := &fakeProvider{name: "helius"}
	r := newTestResolver(t, Config{
		Store:     store,
		Providers: []provider.Provider{p},
	})

	got, err := r.Resolve(context.Background(), "Prog111")
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.Zero(t, p.calls, "cache hit must not invoke any provider")
	assert.Zero(t, store.sets, "cache hit must not rewrite the cache")
}

func TestResolve_MissThenPopulate(t *testing.T) {
	store := newFakeStore()
	p := &fakeProvider{
		name: "helius",
		cand: model.Candidate{Signature: "sigFirst", BlockTime: int64p(1650000000)},
	}
	r := newTestResolver(t, Config{
		Store:     store,
		Providers: []provider.Provider{p},
	})

	got, err := r.Resolve(context.Background(), "Prog111")
	require.NoError(t, err)
	assert.Equal(t, model.DeploymentRecord{Signature: "sigFirst", Timestamp: 1650000000}, got)
	assert.Equal(t, 1, p.calls)

	// The record must now be cached under the derived key.
	key := model.CacheKey(model.NetworkDevnet, "Prog111")
	assert.Equal(t, got, store.records[key])
}

func TestResolve_L1ShortCircuit(t *testing.T) {
	l1 := cache.NewL1(10, time.Hour)
	store := newFakeStore()
	p := &fakeProvider{
		name: "helius",
		cand: model.Candidate{Signature: "sigFirst", BlockTime: int64p(1650000000)},
	}
	r := newTestResolver(t, Config{
		Store:     store,
		L1:        l1,
		Providers: []provider.Provider{p},
	})

	first, err := r.Resolve(context.Background(), "Prog111")
	require.NoError(t, err)

	second, err := r.Resolve(context.Background(), "Prog111")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.calls, "second resolution must come from L1")
	assert.Equal(t, 1, store.gets, "second resolution must not hit the store")
}

func TestResolve_StoreGetErrorTreatedAsMiss(t *testing.T) {
	store := newFakeStore()
	store.getErr = fmt.Errorf("redis get: connection refused")
	p := &fakeProvider{
		name: "helius",
		cand: model.Candidate{Signature: "sigFirst", BlockTime: int64p(1650000000)},
	}
	r := newTestResolver(t, Config{
		Store:     store,
		Providers: []provider.Provider{p},
	})

	got, err := r.Resolve(context.Background(), "Prog111")
	require.NoError(t, err, "a degraded store must not fail the resolution")
	assert.Equal(t, "sigFirst", got.Signature)
	assert.Equal(t, 1, p.calls)
}

func TestResolve_StoreSetErrorSwallowed(t *testing.T) {
	store := newFakeStore()
	store.setErr = fmt.Errorf("redis set: connection refused")
	p := &fakeProvider{
		name: "helius",
		cand: model.Candidate{Signature: "sigFirst", BlockTime: int64p(1650000000)},
	}
	r := newTestResolver(t, Config{
		Store:     store,
		Providers: []provider.Provider{p},
	})

	got, err := r.Resolve(context.Background(), "Prog111")
	require.NoError(t, err, "a failed cache write must not fail the resolution")
	assert.Equal(t, "sigFirst", got.Signature)
	assert.Equal(t, 1, store.sets)
}

func TestResolve_ProviderFailurePropagates(t *testing.T) {
	store := newFakeStore()
	p := &fakeProvider{
		name: "helius",
		err:  fmt.Errorf("%w: slow down", provider.ErrRateLimited),
	}
	r := newTestResolver(t, Config{
		Store:     store,
		Providers: []provider.Provider{p}, // forced: only strategy available
	})

	_, err := r.Resolve(context.Background(), "Prog111")
	assert.ErrorIs(t, err, provider.ErrRateLimited)
	assert.Zero(t, store.sets, "no cache write on failure")
}

func TestResolve_FallsBackToBlockTimeLookup(t *testing.T) {
	timer := &fakeTimer{ts: 1651111111}
	p := &fakeProvider{
		name: "chain_rpc",
		cand: model.Candidate{Signature: "sigNoTime"}, // listing had no blockTime
	}
	r := newTestResolver(t, Config{
		Providers: []provider.Provider{p},
		Times:     timer,
	})

	got, err := r.Resolve(context.Background(), "Prog111")
	require.NoError(t, err)
	assert.Equal(t, int64(1651111111), got.Timestamp)
	assert.Equal(t, 1, timer.calls)
}

func TestResolve_TimestampUnavailablePropagates(t *testing.T) {
	store := newFakeStore()
	timer := &fakeTimer{err: fmt.Errorf("%w: sigNoTime", provider.ErrTimestampUnavailable)}
	p := &fakeProvider{
		name: "chain_rpc",
		cand: model.Candidate{Signature: "sigNoTime"},
	}
	r := newTestResolver(t, Config{
		Store:     store,
		Providers: []provider.Provider{p},
		Times:     timer,
	})

	_, err := r.Resolve(context.Background(), "Prog111")
	assert.ErrorIs(t, err, provider.ErrTimestampUnavailable)
	assert.Zero(t, store.sets)
}

func TestResolve_ProviderSelectionRoughlyUniform(t *testing.T) {
	a := &fakeProvider{name: "helius", cand: model.Candidate{Signature: "sig", BlockTime: int64p(1)}}
	b := &fakeProvider{name: "chain_rpc", cand: model.Candidate{Signature: "sig", BlockTime: int64p(1)}}
	r := newTestResolver(t, Config{
		Providers: []provider.Provider{a, b},
		Selector:  selector.NewSeeded(42),
	})

	const runs = 2000
	for i := 0; i < runs; i++ {
		_, err := r.Resolve(context.Background(), "Prog111")
		require.NoError(t, err)
	}

	fracA := float64(a.calls) / runs
	assert.InDelta(t, 0.5, fracA, 0.05, "helius picked %d of %d", a.calls, runs)
	assert.Equal(t, runs, a.calls+b.calls)
}

func TestResolve_Idempotent(t *testing.T) {
	// Same provider data, cache cleared between runs: identical records.
	var results []model.DeploymentRecord
	for i := 0; i < 2; i++ {
		p := &fakeProvider{
			name: "helius",
			cand: model.Candidate{Signature: "sigFirst", BlockTime: int64p(1650000000)},
		}
		r := newTestResolver(t, Config{
			Store:     newFakeStore(),
			Providers: []provider.Provider{p},
		})
		got, err := r.Resolve(context.Background(), "Prog111")
		require.NoError(t, err)
		results = append(results, got)
	}
	assert.Equal(t, results[0], results[1])
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Selector: selector.New(), Times: &fakeTimer{}})
	assert.Error(t, err, "providers are required")

	_, err = New(Config{
		Providers: []provider.Provider{&fakeProvider{name: "helius"}},
		Times:     &fakeTimer{},
	})
	assert.Error(t, err, "selector is required")

	_, err = New(Config{
		Providers: []provider.Provider{&fakeProvider{name: "helius"}},
		Selector:  selector.New(),
	})
	assert.Error(t, err, "block timer is required")
}
