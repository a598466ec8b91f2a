package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/metrics"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/solana/rpc"
)

const (
	heliusMainnetHost = "mainnet.helius-rpc.com"
	heliusDevnetHost  = "devnet.helius-rpc.com"
)

// HeliusEndpoint builds the Helius RPC URL for a network. The API key
// travels in the URL, which is the Helius convention.
func HeliusEndpoint(network model.Network, apiKey string) string {
	host := heliusDevnetHost
	if network == model.NetworkMainnet {
		host = heliusMainnetHost
	}
	return fmt.Sprintf("https://%s/?api-key=%s", host, apiKey)
}

// Helius resolves the earliest transaction with a single listing call.
// The Helius endpoint returns the address's full history in one response,
// so the last record of the newest-first list is the deployment
// transaction. No pagination is needed on this path.
type Helius struct {
	client rpc.RPCClient
	logger *slog.Logger
}

func NewHelius(network model.Network, apiKey string, timeout time.Duration, logger *slog.Logger) *Helius {
	return &Helius{
		client: rpc.NewClient(HeliusEndpoint(network, apiKey), timeout, logger),
		logger: logger.With("provider", "helius"),
	}
}

func (h *Helius) Name() string {
	return "helius"
}

func (h *Helius) EarliestTransaction(ctx context.Context, program string) (model.Candidate, error) {
	sigs, err := h.client.GetSignaturesForAddress(ctx, program, nil)
	if err != nil {
		err = classify(err)
		metrics.ProviderCallsTotal.WithLabelValues(h.Name(), status(err)).Inc()
		return model.Candidate{}, err
	}

	if len(sigs) == 0 {
		err := fmt.Errorf("%w: %s", ErrNotFound, program)
		metrics.ProviderCallsTotal.WithLabelValues(h.Name(), status(err)).Inc()
		return model.Candidate{}, err
	}

	oldest := sigs[len(sigs)-1]
	h.logger.Debug("resolved earliest signature",
		"program", program, "signature", oldest.Signature, "records", len(sigs))
	metrics.ProviderCallsTotal.WithLabelValues(h.Name(), "ok").Inc()
	return model.Candidate{Signature: oldest.Signature, BlockTime: oldest.BlockTime}, nil
}
