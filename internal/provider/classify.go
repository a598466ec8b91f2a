package provider

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/selector"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/solana/rpc"
)

// classify maps a transport or JSON-RPC failure onto the taxonomy. Context
// cancellation passes through untouched so callers can tell a caller abort
// from a provider fault.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &classifiedError{kind: ErrUnavailable, cause: err}
	}
	if errors.Is(err, selector.ErrNoHealthyEndpoints) {
		return &classifiedError{kind: ErrUnavailable, cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &classifiedError{kind: ErrUnavailable, cause: err}
	}

	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		// -32005 is the Solana server throttling / node-behind code.
		if rpcErr.Code == -32005 {
			return &classifiedError{kind: ErrRateLimited, cause: err}
		}
	}

	lower := strings.ToLower(err.Error())
	if containsAny(lower, rateLimitedTokens) {
		return &classifiedError{kind: ErrRateLimited, cause: err}
	}

	return &classifiedError{kind: ErrUnavailable, cause: err}
}

func containsAny(msg string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

var rateLimitedTokens = []string{
	"rate limit",
	"too many requests",
	"http status 429",
}

// status buckets an error for the provider call counter.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoTransactions):
		return "no_transactions"
	case errors.Is(err, ErrPaginationLimitExceeded):
		return "pagination_limit"
	case errors.Is(err, ErrTimestampUnavailable):
		return "timestamp_unavailable"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
