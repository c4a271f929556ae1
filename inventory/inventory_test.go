package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestIndexerClient(t *testing.T) {
	t.Parallel()

	const listing = `{
		"result": [
			{"mint": "MintA", "associatedTokenAddress": "AtaA", "name": "Shell Pearl", "symbol": "PRL",
				"collection": {"collectionAddress": "Coll1", "verified": true}},
			{"mint": "MintB", "associatedTokenAddress": "AtaB", "name": "Shell Pearl", "symbol": "PRL",
				"collection": {"collectionAddress": "Coll1", "verified": false}},
			{"mint": "MintC", "associatedTokenAddress": "AtaC", "name": "Other", "symbol": "OTH",
				"collection": {"collectionAddress": "Coll1", "verified": true}},
			{"mint": "MintD", "associatedTokenAddress": "AtaD", "name": "Shell Pearl", "symbol": "PRL",
				"collection": {"collectionAddress": "Coll2", "verified": true}},
			{"mint": "MintE", "associatedTokenAddress": "AtaE", "name": "Shell Pearl", "symbol": "PRL",
				"collection": {"collectionAddress": "Coll1", "verified": true}}
		]
	}`

	t.Run("filters by name symbol verification and allow-list", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/account/Wallet1/nft", r.URL.Path)
			require.Equal(t, "secret", r.Header.Get("X-API-Key"))

			_, _ = w.Write([]byte(listing))
		}))
		defer server.Close()

		cli := NewIndexerClient(core.InventoryConfig{
			IndexerURL:         server.URL,
			APIKey:             "secret",
			AllowedCollections: []string{"Coll1"},
		}, hclog.NewNullLogger())

		items, err := cli.Find(context.Background(), "Wallet1", "Shell Pearl", "PRL", 10)
		require.NoError(t, err)
		require.Len(t, items, 2)
		require.Equal(t, "MintA", items[0].CollectibleID)
		require.Equal(t, "AtaA", items[0].AssociatedAccount)
		require.Equal(t, "MintE", items[1].CollectibleID)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(listing))
		}))
		defer server.Close()

		cli := NewIndexerClient(core.InventoryConfig{
			IndexerURL:         server.URL,
			AllowedCollections: []string{"Coll1"},
		}, hclog.NewNullLogger())

		items, err := cli.Find(context.Background(), "Wallet1", "Shell Pearl", "PRL", 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, "MintA", items[0].CollectibleID)
	})

	t.Run("empty allow-list accepts nothing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(listing))
		}))
		defer server.Close()

		cli := NewIndexerClient(core.InventoryConfig{IndexerURL: server.URL}, hclog.NewNullLogger())

		items, err := cli.Find(context.Background(), "Wallet1", "Shell Pearl", "PRL", 10)
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("indexer failure is a network error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		cli := NewIndexerClient(core.InventoryConfig{IndexerURL: server.URL}, hclog.NewNullLogger())

		_, err := cli.Find(context.Background(), "Wallet1", "Shell Pearl", "PRL", 10)
		require.Error(t, err)

		networkErr := &core.NetworkError{}
		require.ErrorAs(t, err, &networkErr)
	})
}
