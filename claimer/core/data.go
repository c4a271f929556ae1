package core

import (
	"fmt"

	"github.com/ShellTrade/bridge-claimer/common"
)

// Claim is a queued request to settle bridged value on the Solana side.
// It is created by the deposit confirmation pipeline in pending state and is
// exclusively owned by the claim processor from the moment it is marked
// inprogress until it reaches a terminal state.
type Claim struct {
	ID          string           `json:"id"`
	Direction   common.Direction `json:"direction"`
	FromAddress string           `json:"fromAddress"`
	ToAddress   string           `json:"toAddress"`
	// ToAmount is a decimal string in the destination token's smallest units
	ToAmount  string             `json:"toAmount"`
	Token     TokenDescriptor    `json:"token"`
	ToStatus  common.ClaimStatus `json:"toStatus"`
	ToDetails *ClaimOutcome      `json:"toDetails,omitempty"`
	// ToTimestamp orders pending claims, unix milliseconds at request time
	ToTimestamp int64 `json:"toTimestamp"`
	// LeaseUntil is set while inprogress, unix milliseconds. A claim whose
	// lease expired is considered abandoned and may be reselected.
	LeaseUntil int64 `json:"leaseUntil,omitempty"`
}

func (c *Claim) ToDBKey() []byte {
	return []byte(c.ID)
}

func (c *Claim) ToHistoryDBKey() []byte {
	return ToHistoryDBKey(c.FromAddress, c.ID)
}

func ToHistoryDBKey(fromAddress string, claimID string) []byte {
	return append(append([]byte(fromAddress), '_'), []byte(claimID)...)
}

func (c *Claim) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("claim has no id")
	}

	if !common.IsValidClaimStatus(c.ToStatus) {
		return fmt.Errorf("claim %s has unknown status: %s", c.ID, c.ToStatus)
	}

	return c.Token.Validate()
}

// TokenDescriptor is the tagged token variant attached to a claim: exactly
// one of Fungible or Collectible is set, selected by IsNFT.
type TokenDescriptor struct {
	IsNFT       bool              `json:"isNFT"`
	Name        string            `json:"name"`
	Symbol      string            `json:"symbol"`
	Fungible    *FungibleToken    `json:"fungible,omitempty"`
	Collectible *CollectibleToken `json:"collectible,omitempty"`
}

type FungibleToken struct {
	Decimals uint8 `json:"decimals"`
	// Address is the token mint address on the destination ledger
	Address string `json:"address"`
}

type CollectibleToken struct {
	URI         string `json:"uri"`
	Inscription string `json:"inscription"`
	// InscribeAmount is the bridged face amount one collectible settles,
	// a decimal string
	InscribeAmount    string `json:"inscribeAmount"`
	CollectionAddress string `json:"collectionMintAddress"`
}

func (t *TokenDescriptor) Validate() error {
	if t.IsNFT {
		if t.Collectible == nil {
			return fmt.Errorf("token %s is tagged NFT but has no collectible descriptor", t.Symbol)
		}

		return nil
	}

	if t.Fungible == nil {
		return fmt.Errorf("token %s is tagged fungible but has no fungible descriptor", t.Symbol)
	}

	return nil
}

// ClaimOutcome is the terminal record written to a claim: the signatures
// produced on the ledger, where and how much was settled, and when. Reason
// is populated on failure only.
type ClaimOutcome struct {
	Signatures []string `json:"signatures"`
	Address    string   `json:"address"`
	Amount     string   `json:"amount"`
	Timestamp  int64    `json:"timestamp"`
	Reason     string   `json:"reason,omitempty"`
}

// InventoryItem is one collectible returned by the inventory lookup.
type InventoryItem struct {
	CollectibleID        string `json:"mint"`
	AssociatedAccount    string `json:"associatedTokenAddress"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	VerifiedCollectionID string `json:"verifiedCollectionAddress,omitempty"`
}

// CollectibleTransfer is one item of an atomic batch transfer.
type CollectibleTransfer struct {
	CollectibleID    string
	DestinationOwner string
}
