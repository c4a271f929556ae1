package processor

import (
	"context"
	"time"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/ShellTrade/bridge-claimer/telemetry"
	"github.com/hashicorp/go-hclog"
)

// ClaimProcessorImpl orchestrates one settlement pass: gate, strategy,
// outcome recording. Settlement errors are caught here and turned into a
// failed claim record; only a shutdown mid-settlement leaves the claim
// inprogress, to be reclaimed through its lease on the next start.
type ClaimProcessorImpl struct {
	gate       core.ClaimQueueGate
	strategy   core.SettlementStrategy
	repository core.ClaimRepository
	logger     hclog.Logger
}

var _ core.ClaimProcessor = (*ClaimProcessorImpl)(nil)

func NewClaimProcessor(
	gate core.ClaimQueueGate, strategy core.SettlementStrategy,
	repository core.ClaimRepository, logger hclog.Logger,
) *ClaimProcessorImpl {
	return &ClaimProcessorImpl{
		gate:       gate,
		strategy:   strategy,
		repository: repository,
		logger:     logger,
	}
}

// Process implements core.ClaimProcessor. The returned error covers storage
// failures only; settlement failures are recorded on the claim itself.
func (p *ClaimProcessorImpl) Process(ctx context.Context) error {
	claim, err := p.gate.SelectNextClaim(ctx)
	if err != nil {
		return err
	}

	if claim == nil {
		return nil
	}

	p.logger.Info("settling claim", "id", claim.ID,
		"direction", claim.Direction, "symbol", claim.Token.Symbol,
		"toAddress", claim.ToAddress, "toAmount", claim.ToAmount, "isNFT", claim.Token.IsNFT)

	startTime := time.Now()

	signatures, settleErr := p.strategy.Settle(ctx, claim)

	outcome := &core.ClaimOutcome{
		Signatures: signatures,
		Address:    claim.ToAddress,
		Amount:     claim.ToAmount,
		Timestamp:  time.Now().UnixMilli(),
	}

	telemetry.UpdateSettlementDuration(time.Since(startTime))

	if common.IsContextDoneErr(settleErr) {
		// settlement interrupted by shutdown, not by the claim itself; no
		// outcome is recorded and the lease makes the claim selectable again
		p.logger.Info("settlement interrupted", "id", claim.ID, "err", settleErr)

		return settleErr
	}

	if settleErr != nil {
		outcome.Reason = settleErr.Error()

		p.logger.Error("settlement failed", "id", claim.ID,
			"partialSignatures", len(signatures), "err", settleErr)
		telemetry.UpdateClaimsFailedCounter(claim.Token.Symbol, 1)

		return p.repository.MarkFailed(claim.ID, outcome)
	}

	p.logger.Info("claim confirmed", "id", claim.ID, "signatures", signatures)
	telemetry.UpdateClaimsConfirmedCounter(claim.Token.Symbol, 1)

	return p.repository.ConfirmClaim(claim.ID, outcome)
}
