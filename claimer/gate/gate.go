package gate

import (
	"context"
	"time"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/telemetry"
	"github.com/hashicorp/go-hclog"
)

// GateImpl is the claim queue gate: it hands out at most one claim at a time,
// oldest pending first. The atomic read-check-write lives in the repository;
// the gate owns the lease policy and the operational logging around it.
type GateImpl struct {
	repository core.ClaimRepository
	lease      time.Duration
	logger     hclog.Logger
}

var _ core.ClaimQueueGate = (*GateImpl)(nil)

func NewGate(repository core.ClaimRepository, config core.GateConfig, logger hclog.Logger) *GateImpl {
	return &GateImpl{
		repository: repository,
		lease:      config.LeaseDuration,
		logger:     logger,
	}
}

// SelectNextClaim implements core.ClaimQueueGate.
func (g *GateImpl) SelectNextClaim(ctx context.Context) (*core.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claim, reclaimed, err := g.repository.SelectNextClaim(time.Now(), g.lease)
	if err != nil {
		return nil, err
	}

	if claim == nil {
		return nil, nil
	}

	if reclaimed {
		g.logger.Warn("reclaimed abandoned inprogress claim",
			"id", claim.ID, "toTimestamp", claim.ToTimestamp)
		telemetry.UpdateClaimsReclaimedCounter(1)
	} else {
		g.logger.Debug("claim selected", "id", claim.ID, "toTimestamp", claim.ToTimestamp)
	}

	return claim, nil
}
