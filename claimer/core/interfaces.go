package core

import (
	"context"
	"time"

	"github.com/ShellTrade/bridge-claimer/common"
)

// ClaimRepository is the durable claim queue and record store. All claim
// mutations go through it; SelectNextClaim is the single serialization point
// for concurrent processor invocations.
type ClaimRepository interface {
	// AddClaim inserts a new pending claim. Fails if the claim already exists.
	AddClaim(claim *Claim) error
	// SelectNextClaim atomically picks the oldest pending claim, marks it
	// inprogress with a lease of now+lease and returns it. It returns nil
	// when another claim holds an unexpired inprogress lease or when no
	// pending claim exists. reclaimed is true when the returned claim was
	// taken over from an expired inprogress lease.
	SelectNextClaim(now time.Time, lease time.Duration) (claim *Claim, reclaimed bool, err error)
	// ConfirmClaim writes the outcome to the permanent transaction history
	// and removes the claim from the pending set, in a single transaction.
	ConfirmClaim(claimID string, outcome *ClaimOutcome) error
	// MarkFailed marks the claim failed with the partial outcome. The claim
	// is retained for operator inspection, never automatically re-queued.
	MarkFailed(claimID string, outcome *ClaimOutcome) error
	// ResetClaim returns a failed or stuck inprogress claim to pending.
	ResetClaim(claimID string) error
	GetClaim(claimID string) (*Claim, error)
	GetClaimsByStatus(status common.ClaimStatus) ([]*Claim, error)
	GetHistory(fromAddress string) ([]*Claim, error)
	// OnChange registers a callback invoked after every queue mutation.
	OnChange(fn func())
	Close() error
}

// ClaimQueueGate enforces single-flight claim consumption: at most one claim
// is inprogress system-wide, selection is FIFO by request timestamp.
type ClaimQueueGate interface {
	SelectNextClaim(ctx context.Context) (*Claim, error)
}

// SettlementStrategy decides and drives the on-chain settlement of one claim.
// The returned signatures may be non-empty even on error, when part of a
// multi-step settlement landed before the failure.
type SettlementStrategy interface {
	Settle(ctx context.Context, claim *Claim) (signatures []string, err error)
}

// LedgerClient wraps the destination ledger RPC boundary. Every call either
// returns a transaction signature or fails with NetworkError (transient,
// already retried per the adapter's budget) or RejectedError (non-retryable).
type LedgerClient interface {
	SignerAddress() string
	// CreateOrGetAccount prepares the destination holding account for the
	// given asset and returns its handle.
	CreateOrGetAccount(ctx context.Context, owner string, assetID string, kind AccountRetryKind) (string, error)
	MintFungible(ctx context.Context, assetID string, amount uint64, destinationAccount string) (string, error)
	// TransferCollectibleBatch delivers all items in one atomic transaction.
	TransferCollectibleBatch(ctx context.Context, items []CollectibleTransfer) (string, error)
	// CreateCollectible mints a brand new collectible for the token and
	// returns its id and the transaction signature.
	CreateCollectible(ctx context.Context, token *TokenDescriptor) (collectibleID string, signature string, err error)
	VerifyCollection(ctx context.Context, collectibleID string, collectionID string) (string, error)
	InscribeContent(ctx context.Context, collectibleID string, content string) (string, error)
}

// AccountRetryKind selects which fixed-delay retry budget applies to account
// preparation: the fungible mint path and the collectible transfer path have
// distinct budgets.
type AccountRetryKind int

const (
	AccountRetryFungible AccountRetryKind = iota
	AccountRetryCollectible
)

// InventoryLookup queries the external indexer for collectibles owned by a
// wallet. Implementations filter to name/symbol matches whose verified
// collection membership is on the configured allow-list, and return at most
// limit items.
type InventoryLookup interface {
	Find(ctx context.Context, owner string, name string, symbol string, limit int) ([]InventoryItem, error)
}

// ClaimProcessor is the root orchestrator, invoked on every queue mutation.
// It re-derives the next claim to act on independently of the trigger payload.
type ClaimProcessor interface {
	Process(ctx context.Context) error
}
