package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testToAddress  = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	testSignerAddr = "4Nd1mYvHrkpNK4uKjNPnWJsQm3Go6aHnP1RfFG2Lxduv"
	testMintAddr   = "ShLLmint1111111111111111111111111111111111"
	testCollection = "co11ect1on111111111111111111111111111111111"
)

func fungibleClaim() *core.Claim {
	return &core.Claim{
		ID:          "tx-fungible",
		Direction:   common.DirectionBridgeToSolana,
		FromAddress: "bc1q0source",
		ToAddress:   testToAddress,
		ToAmount:    "5000000",
		Token: core.TokenDescriptor{
			Name:     "Shell",
			Symbol:   "SHELL",
			Fungible: &core.FungibleToken{Decimals: 6, Address: testMintAddr},
		},
		ToStatus: common.ClaimStatusInProgress,
	}
}

func collectibleClaim(toAmount string) *core.Claim {
	return &core.Claim{
		ID:          "tx-collectible",
		Direction:   common.DirectionBridgeToSolana,
		FromAddress: "bc1q0source",
		ToAddress:   testToAddress,
		ToAmount:    toAmount,
		Token: core.TokenDescriptor{
			IsNFT:  true,
			Name:   "Shell Shard",
			Symbol: "SHARD",
			Collectible: &core.CollectibleToken{
				InscribeAmount:    "1000",
				CollectionAddress: testCollection,
				Inscription:       `{"p":"brc-20","op":"mint"}`,
			},
		},
		ToStatus: common.ClaimStatusInProgress,
	}
}

func inventoryItems(n int) []core.InventoryItem {
	items := make([]core.InventoryItem, n)
	for i := range items {
		items[i] = core.InventoryItem{
			CollectibleID:        string(rune('a' + i)),
			Name:                 "Shell Shard",
			Symbol:               "SHARD",
			VerifiedCollectionID: testCollection,
		}
	}

	return items
}

func TestSettleFungible(t *testing.T) {
	ctx := context.Background()

	t.Run("mints the unit amount", func(t *testing.T) {
		ledgerMock := &core.LedgerClientMock{}
		ledgerMock.On("CreateOrGetAccount", ctx, testToAddress, testMintAddr, core.AccountRetryFungible).
			Return("ata-handle", nil)
		ledgerMock.On("MintFungible", ctx, testMintAddr, uint64(5), "ata-handle").
			Return("mintsig", nil)

		s := NewSettlementStrategy(ledgerMock, &core.InventoryLookupMock{}, core.SettlementConfig{}, hclog.NewNullLogger())

		signatures, err := s.Settle(ctx, fungibleClaim())
		require.NoError(t, err)
		require.Equal(t, []string{"mintsig"}, signatures)
		ledgerMock.AssertExpectations(t)
	})

	t.Run("malformed amount", func(t *testing.T) {
		claim := fungibleClaim()
		claim.ToAmount = "not-a-number"

		s := NewSettlementStrategy(&core.LedgerClientMock{}, &core.InventoryLookupMock{}, core.SettlementConfig{}, hclog.NewNullLogger())

		_, err := s.Settle(ctx, claim)
		require.Error(t, err)

		var malformedErr *core.MalformedClaimError
		require.True(t, errors.As(err, &malformedErr))
	})

	t.Run("account preparation failure escalates", func(t *testing.T) {
		netErr := &core.NetworkError{Op: "createOrGetAccount", Err: errors.New("rpc down")}

		ledgerMock := &core.LedgerClientMock{}
		ledgerMock.On("CreateOrGetAccount", ctx, testToAddress, testMintAddr, core.AccountRetryFungible).
			Return("", netErr)

		s := NewSettlementStrategy(ledgerMock, &core.InventoryLookupMock{}, core.SettlementConfig{}, hclog.NewNullLogger())

		signatures, err := s.Settle(ctx, fungibleClaim())
		require.ErrorIs(t, err, netErr)
		require.Empty(t, signatures)
	})

	t.Run("token descriptor mismatch", func(t *testing.T) {
		claim := fungibleClaim()
		claim.Token.Fungible = nil

		s := NewSettlementStrategy(&core.LedgerClientMock{}, &core.InventoryLookupMock{}, core.SettlementConfig{}, hclog.NewNullLogger())

		_, err := s.Settle(ctx, claim)

		var malformedErr *core.MalformedClaimError
		require.True(t, errors.As(err, &malformedErr))
	})
}

func TestSettleCollectible(t *testing.T) {
	ctx := context.Background()

	t.Run("sufficient inventory transfers exactly the first required", func(t *testing.T) {
		claim := collectibleClaim("3000") // 3 collectibles at 1000 each

		ledgerMock := &core.LedgerClientMock{}
		ledgerMock.On("SignerAddress").Return(testSignerAddr)

		inventoryMock := &core.InventoryLookupMock{}
		inventoryMock.On("Find", ctx, testSignerAddr, "Shell Shard", "SHARD", 3).
			Return(inventoryItems(5), nil)

		expectedTransfers := []core.CollectibleTransfer{
			{CollectibleID: "a", DestinationOwner: testToAddress},
			{CollectibleID: "b", DestinationOwner: testToAddress},
			{CollectibleID: "c", DestinationOwner: testToAddress},
		}
		ledgerMock.On("TransferCollectibleBatch", ctx, expectedTransfers).Return("batchsig", nil)

		s := NewSettlementStrategy(ledgerMock, inventoryMock, core.SettlementConfig{}, hclog.NewNullLogger())

		signatures, err := s.Settle(ctx, claim)
		require.NoError(t, err)
		require.Equal(t, []string{"batchsig"}, signatures)
		ledgerMock.AssertExpectations(t)
		inventoryMock.AssertExpectations(t)
	})

	t.Run("shortfall fails fast without any transfer", func(t *testing.T) {
		claim := collectibleClaim("3000")

		ledgerMock := &core.LedgerClientMock{}
		ledgerMock.On("SignerAddress").Return(testSignerAddr)

		inventoryMock := &core.InventoryLookupMock{}
		inventoryMock.On("Find", ctx, testSignerAddr, "Shell Shard", "SHARD", 3).
			Return(inventoryItems(1), nil)

		s := NewSettlementStrategy(ledgerMock, inventoryMock, core.SettlementConfig{}, hclog.NewNullLogger())

		signatures, err := s.Settle(ctx, claim)
		require.Empty(t, signatures)

		var inventoryErr *core.InsufficientInventoryError
		require.True(t, errors.As(err, &inventoryErr))
		require.Equal(t, 3, inventoryErr.Required)
		require.Equal(t, 1, inventoryErr.Found)

		ledgerMock.AssertNotCalled(t, "TransferCollectibleBatch", mock.Anything, mock.Anything)
	})

	t.Run("non integer collectible count is malformed", func(t *testing.T) {
		claim := collectibleClaim("2500")

		s := NewSettlementStrategy(&core.LedgerClientMock{}, &core.InventoryLookupMock{}, core.SettlementConfig{}, hclog.NewNullLogger())

		_, err := s.Settle(ctx, claim)

		var malformedErr *core.MalformedClaimError
		require.True(t, errors.As(err, &malformedErr))
	})

	t.Run("zero collectibles is malformed", func(t *testing.T) {
		claim := collectibleClaim("0")

		s := NewSettlementStrategy(&core.LedgerClientMock{}, &core.InventoryLookupMock{}, core.SettlementConfig{}, hclog.NewNullLogger())

		_, err := s.Settle(ctx, claim)

		var malformedErr *core.MalformedClaimError
		require.True(t, errors.As(err, &malformedErr))
	})

	t.Run("batch failure reports the ledger error", func(t *testing.T) {
		claim := collectibleClaim("1000")
		netErr := &core.NetworkError{Op: "transferCollectibleBatch", Err: errors.New("rpc down")}

		ledgerMock := &core.LedgerClientMock{}
		ledgerMock.On("SignerAddress").Return(testSignerAddr)
		ledgerMock.On("TransferCollectibleBatch", ctx, mock.Anything).Return("", netErr)

		inventoryMock := &core.InventoryLookupMock{}
		inventoryMock.On("Find", ctx, testSignerAddr, "Shell Shard", "SHARD", 1).
			Return(inventoryItems(1), nil)

		s := NewSettlementStrategy(ledgerMock, inventoryMock, core.SettlementConfig{}, hclog.NewNullLogger())

		_, err := s.Settle(ctx, claim)
		require.ErrorIs(t, err, netErr)
	})

	t.Run("mint on demand mints the shortfall then transfers", func(t *testing.T) {
		claim := collectibleClaim("2000")

		ledgerMock := &core.LedgerClientMock{}
		ledgerMock.On("SignerAddress").Return(testSignerAddr)
		ledgerMock.On("CreateCollectible", ctx, &claim.Token).Return("new-mint", "createsig", nil)
		ledgerMock.On("VerifyCollection", ctx, "new-mint", testCollection).Return("verifysig", nil)
		ledgerMock.On("InscribeContent", ctx, "new-mint", claim.Token.Collectible.Inscription).
			Return("inscribesig", nil)
		ledgerMock.On("TransferCollectibleBatch", ctx, mock.Anything).Return("batchsig", nil)

		inventoryMock := &core.InventoryLookupMock{}
		inventoryMock.On("Find", ctx, testSignerAddr, "Shell Shard", "SHARD", 2).
			Return(inventoryItems(1), nil).Once()
		inventoryMock.On("Find", ctx, testSignerAddr, "Shell Shard", "SHARD", 2).
			Return(inventoryItems(2), nil).Once()

		s := NewSettlementStrategy(ledgerMock, inventoryMock,
			core.SettlementConfig{EnableMintOnDemand: true}, hclog.NewNullLogger())

		signatures, err := s.Settle(ctx, claim)
		require.NoError(t, err)
		require.Equal(t, []string{"createsig", "verifysig", "inscribesig", "batchsig"}, signatures)
	})

	t.Run("mint on demand failure keeps partial signatures", func(t *testing.T) {
		claim := collectibleClaim("2000")
		rejectedErr := &core.RejectedError{Op: "verifyCollection", Err: errors.New("wrong authority")}

		ledgerMock := &core.LedgerClientMock{}
		ledgerMock.On("SignerAddress").Return(testSignerAddr)
		ledgerMock.On("CreateCollectible", ctx, &claim.Token).Return("new-mint", "createsig", nil)
		ledgerMock.On("VerifyCollection", ctx, "new-mint", testCollection).Return("", rejectedErr)

		inventoryMock := &core.InventoryLookupMock{}
		inventoryMock.On("Find", ctx, testSignerAddr, "Shell Shard", "SHARD", 2).
			Return(inventoryItems(1), nil)

		s := NewSettlementStrategy(ledgerMock, inventoryMock,
			core.SettlementConfig{EnableMintOnDemand: true}, hclog.NewNullLogger())

		signatures, err := s.Settle(ctx, claim)
		require.ErrorIs(t, err, rejectedErr)
		require.Equal(t, []string{"createsig"}, signatures)

		ledgerMock.AssertNotCalled(t, "TransferCollectibleBatch", mock.Anything, mock.Anything)
	})
}
