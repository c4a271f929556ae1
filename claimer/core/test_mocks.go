package core

import (
	"context"
	"time"

	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/stretchr/testify/mock"
)

type ClaimRepositoryMock struct {
	mock.Mock
}

var _ ClaimRepository = (*ClaimRepositoryMock)(nil)

// AddClaim implements ClaimRepository.
func (m *ClaimRepositoryMock) AddClaim(claim *Claim) error {
	args := m.Called(claim)

	return args.Error(0)
}

// SelectNextClaim implements ClaimRepository.
func (m *ClaimRepositoryMock) SelectNextClaim(now time.Time, lease time.Duration) (*Claim, bool, error) {
	args := m.Called(now, lease)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}

	arg0, _ := args.Get(0).(*Claim)

	return arg0, args.Bool(1), args.Error(2)
}

// ConfirmClaim implements ClaimRepository.
func (m *ClaimRepositoryMock) ConfirmClaim(claimID string, outcome *ClaimOutcome) error {
	args := m.Called(claimID, outcome)

	return args.Error(0)
}

// MarkFailed implements ClaimRepository.
func (m *ClaimRepositoryMock) MarkFailed(claimID string, outcome *ClaimOutcome) error {
	args := m.Called(claimID, outcome)

	return args.Error(0)
}

// ResetClaim implements ClaimRepository.
func (m *ClaimRepositoryMock) ResetClaim(claimID string) error {
	args := m.Called(claimID)

	return args.Error(0)
}

// GetClaim implements ClaimRepository.
func (m *ClaimRepositoryMock) GetClaim(claimID string) (*Claim, error) {
	args := m.Called(claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).(*Claim)

	return arg0, args.Error(1)
}

// GetClaimsByStatus implements ClaimRepository.
func (m *ClaimRepositoryMock) GetClaimsByStatus(status common.ClaimStatus) ([]*Claim, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).([]*Claim)

	return arg0, args.Error(1)
}

// GetHistory implements ClaimRepository.
func (m *ClaimRepositoryMock) GetHistory(fromAddress string) ([]*Claim, error) {
	args := m.Called(fromAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).([]*Claim)

	return arg0, args.Error(1)
}

// OnChange implements ClaimRepository.
func (m *ClaimRepositoryMock) OnChange(fn func()) {
	m.Called()
}

// Close implements ClaimRepository.
func (m *ClaimRepositoryMock) Close() error {
	args := m.Called()

	return args.Error(0)
}

type ClaimQueueGateMock struct {
	mock.Mock
}

var _ ClaimQueueGate = (*ClaimQueueGateMock)(nil)

// SelectNextClaim implements ClaimQueueGate.
func (m *ClaimQueueGateMock) SelectNextClaim(ctx context.Context) (*Claim, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).(*Claim)

	return arg0, args.Error(1)
}

type SettlementStrategyMock struct {
	mock.Mock
}

var _ SettlementStrategy = (*SettlementStrategyMock)(nil)

// Settle implements SettlementStrategy.
func (m *SettlementStrategyMock) Settle(ctx context.Context, claim *Claim) ([]string, error) {
	args := m.Called(ctx, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).([]string)

	return arg0, args.Error(1)
}

type LedgerClientMock struct {
	mock.Mock
}

var _ LedgerClient = (*LedgerClientMock)(nil)

// SignerAddress implements LedgerClient.
func (m *LedgerClientMock) SignerAddress() string {
	args := m.Called()

	return args.String(0)
}

// CreateOrGetAccount implements LedgerClient.
func (m *LedgerClientMock) CreateOrGetAccount(
	ctx context.Context, owner string, assetID string, kind AccountRetryKind,
) (string, error) {
	args := m.Called(ctx, owner, assetID, kind)

	return args.String(0), args.Error(1)
}

// MintFungible implements LedgerClient.
func (m *LedgerClientMock) MintFungible(
	ctx context.Context, assetID string, amount uint64, destinationAccount string,
) (string, error) {
	args := m.Called(ctx, assetID, amount, destinationAccount)

	return args.String(0), args.Error(1)
}

// TransferCollectibleBatch implements LedgerClient.
func (m *LedgerClientMock) TransferCollectibleBatch(
	ctx context.Context, items []CollectibleTransfer,
) (string, error) {
	args := m.Called(ctx, items)

	return args.String(0), args.Error(1)
}

// CreateCollectible implements LedgerClient.
func (m *LedgerClientMock) CreateCollectible(
	ctx context.Context, token *TokenDescriptor,
) (string, string, error) {
	args := m.Called(ctx, token)

	return args.String(0), args.String(1), args.Error(2)
}

// VerifyCollection implements LedgerClient.
func (m *LedgerClientMock) VerifyCollection(
	ctx context.Context, collectibleID string, collectionID string,
) (string, error) {
	args := m.Called(ctx, collectibleID, collectionID)

	return args.String(0), args.Error(1)
}

// InscribeContent implements LedgerClient.
func (m *LedgerClientMock) InscribeContent(
	ctx context.Context, collectibleID string, content string,
) (string, error) {
	args := m.Called(ctx, collectibleID, content)

	return args.String(0), args.Error(1)
}

type ClaimProcessorMock struct {
	mock.Mock
}

var _ ClaimProcessor = (*ClaimProcessorMock)(nil)

// Process implements ClaimProcessor.
func (m *ClaimProcessorMock) Process(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

type InventoryLookupMock struct {
	mock.Mock
}

var _ InventoryLookup = (*InventoryLookupMock)(nil)

// Find implements InventoryLookup.
func (m *InventoryLookupMock) Find(
	ctx context.Context, owner string, name string, symbol string, limit int,
) ([]InventoryItem, error) {
	args := m.Called(ctx, owner, name, symbol, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	arg0, _ := args.Get(0).([]InventoryItem)

	return arg0, args.Error(1)
}
