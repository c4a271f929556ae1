package settlement

import (
	"context"
	"fmt"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/hashicorp/go-hclog"
)

// StrategyImpl drives the on-chain settlement of one claim: a fungible claim
// becomes a mint to the destination wallet, a collectible claim becomes an
// atomic batch transfer out of the signer's verified inventory.
type StrategyImpl struct {
	ledger    core.LedgerClient
	inventory core.InventoryLookup
	config    core.SettlementConfig
	logger    hclog.Logger
}

var _ core.SettlementStrategy = (*StrategyImpl)(nil)

func NewSettlementStrategy(
	ledger core.LedgerClient, inventory core.InventoryLookup,
	config core.SettlementConfig, logger hclog.Logger,
) *StrategyImpl {
	return &StrategyImpl{
		ledger:    ledger,
		inventory: inventory,
		config:    config,
		logger:    logger,
	}
}

// Settle implements core.SettlementStrategy. The returned signatures may be
// non-empty even on error, when part of a multi-step settlement landed
// before the failure; the processor records them either way.
func (s *StrategyImpl) Settle(ctx context.Context, claim *core.Claim) ([]string, error) {
	if err := claim.Token.Validate(); err != nil {
		return nil, &core.MalformedClaimError{ClaimID: claim.ID, Err: err}
	}

	if claim.Token.IsNFT {
		return s.settleCollectible(ctx, claim)
	}

	return s.settleFungible(ctx, claim)
}

func (s *StrategyImpl) settleFungible(ctx context.Context, claim *core.Claim) ([]string, error) {
	token := claim.Token.Fungible

	units, err := common.FungibleUnits(claim.ToAmount, token.Decimals)
	if err != nil {
		return nil, &core.MalformedClaimError{ClaimID: claim.ID, Err: err}
	}

	s.logger.Info("settling fungible claim",
		"id", claim.ID, "toAddress", claim.ToAddress, "units", units, "mint", token.Address)

	account, err := s.ledger.CreateOrGetAccount(ctx, claim.ToAddress, token.Address, core.AccountRetryFungible)
	if err != nil {
		return nil, err
	}

	signature, err := s.ledger.MintFungible(ctx, token.Address, units, account)
	if err != nil {
		return nil, err
	}

	return []string{signature}, nil
}

func (s *StrategyImpl) settleCollectible(ctx context.Context, claim *core.Claim) ([]string, error) {
	token := claim.Token.Collectible

	requiredCount, err := common.CollectibleCount(claim.ToAmount, token.InscribeAmount)
	if err != nil {
		return nil, &core.MalformedClaimError{ClaimID: claim.ID, Err: err}
	}

	if requiredCount == 0 {
		return nil, &core.MalformedClaimError{
			ClaimID: claim.ID, Err: fmt.Errorf("claim settles zero collectibles"),
		}
	}

	required := int(requiredCount)
	ownerWallet := s.ledger.SignerAddress()

	owned, err := s.inventory.Find(ctx, ownerWallet, claim.Token.Name, claim.Token.Symbol, required)
	if err != nil {
		return nil, err
	}

	s.logger.Info("collectible inventory checked",
		"id", claim.ID, "required", required, "owned", len(owned))

	var signatures []string

	if len(owned) < required {
		if !s.config.EnableMintOnDemand {
			// Minting the shortfall inline is a slow multi-confirmation
			// sequence that would hold the single settlement slot open for
			// an unbounded duration, so the claim fails fast instead.
			return nil, &core.InsufficientInventoryError{Required: required, Found: len(owned)}
		}

		mintSigs, err := s.mintShortfall(ctx, claim, required-len(owned))
		signatures = append(signatures, mintSigs...)

		if err != nil {
			return signatures, err
		}

		owned, err = s.inventory.Find(ctx, ownerWallet, claim.Token.Name, claim.Token.Symbol, required)
		if err != nil {
			return signatures, err
		}

		if len(owned) < required {
			return signatures, &core.InsufficientInventoryError{Required: required, Found: len(owned)}
		}
	}

	transfers := make([]core.CollectibleTransfer, 0, required)
	for _, item := range owned[:required] {
		transfers = append(transfers, core.CollectibleTransfer{
			CollectibleID:    item.CollectibleID,
			DestinationOwner: claim.ToAddress,
		})
	}

	batchSignature, err := s.ledger.TransferCollectibleBatch(ctx, transfers)
	if err != nil {
		return signatures, err
	}

	return append(signatures, batchSignature), nil
}

// mintShortfall mints, collection-verifies and inscribes the missing
// collectibles one by one. Reachable only with EnableMintOnDemand set.
func (s *StrategyImpl) mintShortfall(ctx context.Context, claim *core.Claim, needed int) ([]string, error) {
	token := claim.Token.Collectible

	s.logger.Warn("minting collectible shortfall on demand", "id", claim.ID, "needed", needed)

	var signatures []string

	for i := 0; i < needed; i++ {
		collectibleID, signature, err := s.ledger.CreateCollectible(ctx, &claim.Token)
		if err != nil {
			return signatures, err
		}

		signatures = append(signatures, signature)

		signature, err = s.ledger.VerifyCollection(ctx, collectibleID, token.CollectionAddress)
		if err != nil {
			return signatures, err
		}

		signatures = append(signatures, signature)

		signature, err = s.ledger.InscribeContent(ctx, collectibleID, token.Inscription)
		if err != nil {
			return signatures, err
		}

		signatures = append(signatures, signature)
	}

	return signatures, nil
}
