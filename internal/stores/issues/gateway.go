// internal/stores/issues/gateway.go
package issues

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"delivery-engine/internal/common/config"
	"delivery-engine/internal/models"
)

// Gateway is the remote support endpoint submissions travel to.
type Gateway interface {
	Submit(ctx context.Context, issue models.Issue) error
}

// SimulatedGateway stands in for the real support backend. It sleeps a random
// interval inside the configured latency window and fails a configured
// fraction of submissions. Cancelling the context aborts the wait.
type SimulatedGateway struct {
	cfg config.GatewayConfig
}

// NewSimulatedGateway creates a gateway from the configured latency window
// and failure rate. A zero config submits instantly and never fails.
func NewSimulatedGateway(cfg config.GatewayConfig) *SimulatedGateway {
	return &SimulatedGateway{cfg: cfg}
}

func (g *SimulatedGateway) Submit(ctx context.Context, issue models.Issue) error {
	delay := g.cfg.MinLatencyMs
	if spread := g.cfg.MaxLatencyMs - g.cfg.MinLatencyMs; spread > 0 {
		delay += rand.Intn(spread + 1)
	}

	if delay > 0 {
		timer := time.NewTimer(time.Duration(delay) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	if g.cfg.FailureRate > 0 && rand.Float64() < g.cfg.FailureRate {
		return fmt.Errorf("support gateway rejected issue %s", issue.ID)
	}
	return nil
}
