package selector

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/circuitbreaker"
	"github.com/ZaphyrRobin/kinetic-takehome/internal/metrics"
)

// ErrNoHealthyEndpoints is returned when every endpoint's breaker is open.
var ErrNoHealthyEndpoints = errors.New("no healthy rpc endpoints available")

// EndpointPool holds the configured RPC endpoint URLs for one network and
// picks one at random per call. A per-endpoint circuit breaker narrows the
// candidate set to currently healthy endpoints; the draw among those stays
// uniform. Cursors are plain signature strings, so successive page calls
// may land on different endpoints without losing pagination progress.
type EndpointPool struct {
	endpoints []string
	breakers  []*circuitbreaker.Breaker
	sel       *Selector
}

func NewEndpointPool(endpoints []string, sel *Selector, logger *slog.Logger) (*EndpointPool, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("endpoint pool: no endpoints configured")
	}

	breakers := make([]*circuitbreaker.Breaker, len(endpoints))
	for i, url := range endpoints {
		url := url
		breakers[i] = circuitbreaker.New(circuitbreaker.Config{
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("endpoint breaker state change",
					"endpoint", url, "from", from.String(), "to", to.String())
				metrics.BreakerTransitions.WithLabelValues(url, to.String()).Inc()
			},
		})
	}

	return &EndpointPool{
		endpoints: endpoints,
		breakers:  breakers,
		sel:       sel,
	}, nil
}

// Pick returns a random healthy endpoint and its index for Report.
func (p *EndpointPool) Pick() (string, int, error) {
	healthy := make([]int, 0, len(p.endpoints))
	for i, b := range p.breakers {
		if b.Allow() == nil {
			healthy = append(healthy, i)
		}
	}
	if len(healthy) == 0 {
		return "", 0, ErrNoHealthyEndpoints
	}
	idx := healthy[p.sel.Index(len(healthy))]
	return p.endpoints[idx], idx, nil
}

// Report feeds a call outcome back into the endpoint's breaker.
func (p *EndpointPool) Report(idx int, err error) {
	if err != nil {
		p.breakers[idx].RecordFailure()
		return
	}
	p.breakers[idx].RecordSuccess()
}

// Size returns the number of configured endpoints.
func (p *EndpointPool) Size() int {
	return len(p.endpoints)
}
