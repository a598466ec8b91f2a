package model

import (
	"fmt"
	"time"
)

// Network selects which Solana cluster a resolution runs against. It also
// namespaces cache keys so mainnet and devnet answers never collide.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkDevnet  Network = "devnet"
)

func (n Network) String() string {
	return string(n)
}

// ParseNetwork validates a caller-supplied network name.
func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkMainnet:
		return NetworkMainnet, nil
	case NetworkDevnet:
		return NetworkDevnet, nil
	default:
		return "", fmt.Errorf("unknown network %q (want %s or %s)", s, NetworkMainnet, NetworkDevnet)
	}
}

// DeploymentRecord is the resolved answer for one program: the signature of
// its earliest transaction and that transaction's block time. Records are
// immutable once constructed and are the unit stored in the cache.
type DeploymentRecord struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
}

// Time returns the block time as a UTC wall-clock time.
func (r DeploymentRecord) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// Candidate is a provider-resolved earliest transaction. BlockTime is nil
// when the listing record did not carry one; the orchestrator then falls
// back to a getTransaction lookup.
type Candidate struct {
	Signature string
	BlockTime *int64
}

// CacheKey derives the cache identity for a (network, program) pair.
// The same pair always maps to the same key.
func CacheKey(network Network, program string) string {
	return fmt.Sprintf("first_deployment:%s:%s", network, program)
}
