package provider

import (
	"context"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
)

// Provider resolves the earliest transaction for a program address. The two
// implementations (Helius, chain RPC) are interchangeable strategies; the
// orchestrator picks one at random per resolution.
type Provider interface {
	Name() string
	EarliestTransaction(ctx context.Context, program string) (model.Candidate, error)
}
