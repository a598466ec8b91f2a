package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/metrics"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/ratelimit"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/selector"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/solana/rpc"
)

const (
	defaultPageSize = 1000
	defaultMaxPages = 100
)

// ChainRPC resolves the earliest transaction by walking
// getSignaturesForAddress pages backward. The RPC only lists newest-first
// with a "before" cursor, so the walk issues successive page calls until it
// observes a short page, or an empty page confirming the previous page's
// oldest record. Every page call independently re-picks an endpoint from
// the pool; the cursor is an opaque signature, valid on any endpoint.
type ChainRPC struct {
	pool     *selector.EndpointPool
	limiter  *ratelimit.Limiter
	pageSize int
	maxPages int
	logger   *slog.Logger

	mu        sync.Mutex
	clients   map[string]rpc.RPCClient
	newClient func(url string) rpc.RPCClient
}

// ChainRPCConfig configures the chain RPC provider for one network.
type ChainRPCConfig struct {
	Endpoints []string
	PageSize  int           // records per page, default 1000
	MaxPages  int           // walk ceiling, default 100
	Timeout   time.Duration // per-request HTTP timeout
	RPS       float64       // inter-page pacing
	Burst     int
}

func NewChainRPC(cfg ChainRPCConfig, sel *selector.Selector, logger *slog.Logger) (*ChainRPC, error) {
	pool, err := selector.NewEndpointPool(cfg.Endpoints, sel, logger)
	if err != nil {
		return nil, err
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &ChainRPC{
		pool:     pool,
		limiter:  ratelimit.NewLimiter(rps, burst, "chain_rpc"),
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger.With("provider", "chain_rpc"),
	}
	c.clients = make(map[string]rpc.RPCClient, len(cfg.Endpoints))
	timeout := cfg.Timeout
	c.newClient = func(url string) rpc.RPCClient {
		return rpc.NewClient(url, timeout, logger)
	}
	return c, nil
}

func (c *ChainRPC) Name() string {
	return "chain_rpc"
}

func (c *ChainRPC) clientFor(url string) rpc.RPCClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[url]; ok {
		return client
	}
	client := c.newClient(url)
	c.clients[url] = client
	return client
}

// EarliestTransaction walks backward page by page. Pages are strictly
// sequential: each cursor depends on the previous page, so the walk must
// not be parallelized. Termination: a page shorter than pageSize ends the
// walk at its own oldest record; an exact-size page forces one more call,
// and an empty follow-up confirms the previous page's oldest record. An
// empty first page means the address has no history at all.
func (c *ChainRPC) EarliestTransaction(ctx context.Context, program string) (model.Candidate, error) {
	cand, pages, err := c.walk(ctx, program)
	metrics.ProviderPagesWalked.Observe(float64(pages))
	metrics.ProviderCallsTotal.WithLabelValues(c.Name(), status(err)).Inc()
	return cand, err
}

func (c *ChainRPC) walk(ctx context.Context, program string) (model.Candidate, int, error) {
	var oldest *rpc.SignatureInfo
	before := ""

	for page := 1; page <= c.maxPages; page++ {
		if page > 1 {
			if err := c.limiter.Wait(ctx); err != nil {
				return model.Candidate{}, page - 1, err
			}
		}

		url, idx, err := c.pool.Pick()
		if err != nil {
			return model.Candidate{}, page - 1, classify(err)
		}

		opts := &rpc.GetSignaturesOpts{Limit: c.pageSize}
		if before != "" {
			opts.Before = before
		}

		sigs, err := c.clientFor(url).GetSignaturesForAddress(ctx, program, opts)
		c.pool.Report(idx, err)
		if err != nil {
			return model.Candidate{}, page, classify(err)
		}

		c.logger.Debug("walked signature page",
			"program", program, "page", page, "records", len(sigs), "endpoint", url)

		if len(sigs) == 0 {
			if oldest == nil {
				return model.Candidate{}, page, fmt.Errorf("%w: %s", ErrNoTransactions, program)
			}
			// Empty follow-up confirms the previous page ended the history.
			return model.Candidate{Signature: oldest.Signature, BlockTime: oldest.BlockTime}, page, nil
		}

		last := sigs[len(sigs)-1]
		oldest = &last

		if len(sigs) < c.pageSize {
			return model.Candidate{Signature: last.Signature, BlockTime: last.BlockTime}, page, nil
		}
		before = last.Signature
	}

	return model.Candidate{}, c.maxPages, fmt.Errorf("%w: gave up after %d pages", ErrPaginationLimitExceeded, c.maxPages)
}

// BlockTime fetches the block time for a signature, for records whose
// listing entry carried no blockTime. A missing transaction or a null
// blockTime both mean the node cannot confirm when it landed.
func (c *ChainRPC) BlockTime(ctx context.Context, signature string) (int64, error) {
	url, idx, err := c.pool.Pick()
	if err != nil {
		return 0, classify(err)
	}

	tx, err := c.clientFor(url).GetTransaction(ctx, signature)
	c.pool.Report(idx, err)
	if err != nil {
		return 0, classify(err)
	}
	if tx == nil || tx.BlockTime == nil {
		return 0, fmt.Errorf("%w: %s", ErrTimestampUnavailable, signature)
	}
	return *tx.BlockTime, nil
}
