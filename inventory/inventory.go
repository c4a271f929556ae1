package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/telemetry"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	requestTimeout = 10 * time.Second
	apiKeyHeader   = "X-API-Key"
)

// indexerNFT is one entry of the indexer's account NFT listing.
type indexerNFT struct {
	Mint                   string `json:"mint"`
	AssociatedTokenAddress string `json:"associatedTokenAddress"`
	Name                   string `json:"name"`
	Symbol                 string `json:"symbol"`
	Collection             struct {
		CollectionAddress string `json:"collectionAddress"`
		Verified          bool   `json:"verified"`
	} `json:"collection"`
}

type indexerResponse struct {
	Result []indexerNFT `json:"result"`
}

// IndexerClient looks up a wallet's collectible inventory through an NFT
// indexer API. Only entries matching the requested name and symbol whose
// collection is verified and allow-listed count as settlement inventory.
type IndexerClient struct {
	baseURL            string
	apiKey             string
	allowedCollections map[string]bool
	httpClient         *retryablehttp.Client
	logger             hclog.Logger
}

var _ core.InventoryLookup = (*IndexerClient)(nil)

func NewIndexerClient(config core.InventoryConfig, logger hclog.Logger) *IndexerClient {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.HTTPClient.Timeout = requestTimeout
	httpClient.Logger = nil

	allowed := make(map[string]bool, len(config.AllowedCollections))
	for _, collection := range config.AllowedCollections {
		allowed[collection] = true
	}

	return &IndexerClient{
		baseURL:            config.IndexerURL,
		apiKey:             config.APIKey,
		allowedCollections: allowed,
		httpClient:         httpClient,
		logger:             logger,
	}
}

// Find implements core.InventoryLookup. Returns at most limit items.
func (c *IndexerClient) Find(
	ctx context.Context, owner string, name string, symbol string, limit int,
) ([]core.InventoryItem, error) {
	const op = "inventory lookup"

	url := fmt.Sprintf("%s/account/%s/nft", c.baseURL, owner)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &core.NetworkError{Op: op, Err: err}
	}

	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.NetworkError{Op: op, Err: err}
	}

	defer resp.Body.Close()

	telemetry.UpdateInventoryLookupCounter(1)

	if resp.StatusCode != http.StatusOK {
		return nil, &core.NetworkError{
			Op: op, Err: fmt.Errorf("indexer returned status %d", resp.StatusCode),
		}
	}

	var listing indexerResponse

	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, &core.NetworkError{Op: op, Err: fmt.Errorf("error decoding indexer response: %w", err)}
	}

	items := make([]core.InventoryItem, 0, limit)

	for _, nft := range listing.Result {
		if !c.matches(nft, name, symbol) {
			continue
		}

		items = append(items, core.InventoryItem{
			CollectibleID:        nft.Mint,
			AssociatedAccount:    nft.AssociatedTokenAddress,
			Name:                 nft.Name,
			Symbol:               nft.Symbol,
			VerifiedCollectionID: nft.Collection.CollectionAddress,
		})

		if limit > 0 && len(items) == limit {
			break
		}
	}

	c.logger.Debug("inventory lookup finished",
		"owner", owner, "name", name, "symbol", symbol, "listed", len(listing.Result), "matched", len(items))

	return items, nil
}

func (c *IndexerClient) matches(nft indexerNFT, name string, symbol string) bool {
	if nft.Name != name || nft.Symbol != symbol {
		return false
	}

	if !nft.Collection.Verified {
		return false
	}

	// an empty allow-list accepts nothing, a spoofed collection must never
	// count as settlement inventory
	return c.allowedCollections[nft.Collection.CollectionAddress]
}
