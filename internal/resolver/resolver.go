package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/cache"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/metrics"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/provider"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/selector"
	"github.com/google/uuid"
)

// Store is the shared cache gateway. A nil record with a nil error is a
// miss; an error means the store is degraded and the resolution proceeds
// as if uncached.
type Store interface {
	Get(ctx context.Context, key string) (*model.DeploymentRecord, error)
	Set(ctx context.Context, key string, rec model.DeploymentRecord, ttl time.Duration) error
}

// BlockTimer fetches the block time for a signature whose listing record
// carried none.
type BlockTimer interface {
	BlockTime(ctx context.Context, signature string) (int64, error)
}

// Resolver answers one point query per Resolve call: the earliest
// transaction of a program and its block time. Cache first; on a miss one
// randomly selected provider strategy runs to completion or failure, with
// no in-call failover. The random selection across independent invocations
// is the robustness mechanism, so a caller retry re-randomizes.
type Resolver struct {
	network   model.Network
	store     Store
	l1        *cache.L1
	providers []provider.Provider
	sel       *selector.Selector
	times     BlockTimer
	ttl       time.Duration
	logger    *slog.Logger
}

// Config wires a resolver for one network.
type Config struct {
	Network   model.Network
	Store     Store // nil runs uncached
	L1        *cache.L1
	Providers []provider.Provider
	Selector  *selector.Selector
	Times     BlockTimer
	TTL       time.Duration
	Logger    *slog.Logger
}

func New(cfg Config) (*Resolver, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("resolver: no providers configured")
	}
	if cfg.Selector == nil {
		return nil, fmt.Errorf("resolver: selector is required")
	}
	if cfg.Times == nil {
		return nil, fmt.Errorf("resolver: block timer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		network:   cfg.Network,
		store:     cfg.Store,
		l1:        cfg.L1,
		providers: cfg.Providers,
		sel:       cfg.Selector,
		times:     cfg.Times,
		ttl:       cfg.TTL,
		logger:    logger.With("component", "resolver", "network", cfg.Network),
	}, nil
}

// Resolve returns the program's first-deployment record, from cache when
// possible. Provider and resolution failures propagate as the final
// outcome; cache failures never do.
func (r *Resolver) Resolve(ctx context.Context, program string) (model.DeploymentRecord, error) {
	program = strings.TrimSpace(program)
	if program == "" {
		return model.DeploymentRecord{}, fmt.Errorf("program address is empty")
	}

	log := r.logger.With("resolution_id", uuid.NewString(), "program", program)
	network := r.network.String()
	start := time.Now()
	key := model.CacheKey(r.network, program)

	if r.l1 != nil {
		if rec, ok := r.l1.Get(key); ok {
			metrics.CacheRequestsTotal.WithLabelValues("l1", "hit").Inc()
			log.Debug("cache hit", "layer", "l1", "signature", rec.Signature)
			return rec, nil
		}
		metrics.CacheRequestsTotal.WithLabelValues("l1", "miss").Inc()
	}

	if r.store != nil {
		rec, err := r.store.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheRequestsTotal.WithLabelValues("redis", "error").Inc()
			log.Warn("cache read failed, treating as miss", "error", err)
		case rec != nil:
			metrics.CacheRequestsTotal.WithLabelValues("redis", "hit").Inc()
			if r.l1 != nil {
				r.l1.Put(key, *rec)
			}
			log.Debug("cache hit", "layer", "redis", "signature", rec.Signature)
			return *rec, nil
		default:
			metrics.CacheRequestsTotal.WithLabelValues("redis", "miss").Inc()
		}
	}

	p := r.providers[r.sel.Index(len(r.providers))]
	log.Debug("selected provider", "provider", p.Name())

	cand, err := p.EarliestTransaction(ctx, program)
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues(network, "error").Inc()
		return model.DeploymentRecord{}, fmt.Errorf("%s: %w", p.Name(), err)
	}

	var ts int64
	if cand.BlockTime != nil {
		ts = *cand.BlockTime
	} else {
		ts, err = r.times.BlockTime(ctx, cand.Signature)
		if err != nil {
			metrics.ResolutionsTotal.WithLabelValues(network, "error").Inc()
			return model.DeploymentRecord{}, fmt.Errorf("resolve block time: %w", err)
		}
	}

	rec := model.DeploymentRecord{Signature: cand.Signature, Timestamp: ts}

	if r.l1 != nil {
		r.l1.Put(key, rec)
	}
	if r.store != nil {
		if err := r.store.Set(ctx, key, rec, r.ttl); err != nil {
			// Best effort: the computed answer is still returned.
			metrics.CacheWriteErrors.WithLabelValues("redis").Inc()
			log.Warn("cache write failed", "error", err)
		}
	}

	metrics.ResolutionsTotal.WithLabelValues(network, "ok").Inc()
	metrics.ResolutionDuration.WithLabelValues(network).Observe(time.Since(start).Seconds())
	log.Info("resolved first deployment",
		"provider", p.Name(), "signature", rec.Signature, "timestamp", rec.Timestamp)
	return rec, nil
}
