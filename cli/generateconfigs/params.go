package cligenerateconfigs

import (
	"fmt"
	"path/filepath"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/spf13/cobra"
)

const (
	outputDirFlag      = "output-dir"
	outputFileNameFlag = "output-file-name"
	dbPathFlag         = "db-path"
	rpcEndpointFlag    = "ledger-rpc"
	wsEndpointFlag     = "ledger-ws"
	signerKeyPathFlag  = "signer-key"
	indexerURLFlag         = "indexer-url"
	allowedCollectionsFlag = "allowed-collections"
	apiPortFlag            = "api-port"
	apiKeysFlag            = "api-keys"

	outputDirFlagDesc      = "directory where the config file is written"
	outputFileNameFlagDesc = "config file name"
	dbPathFlagDesc         = "path to the claimer database file"
	rpcEndpointFlagDesc    = "ledger rpc endpoint url"
	wsEndpointFlagDesc     = "ledger websocket endpoint url"
	signerKeyPathFlagDesc  = "path to the settlement wallet keypair file"
	indexerURLFlagDesc         = "nft indexer api url"
	allowedCollectionsFlagDesc = "verified collection addresses accepted as settlement inventory"
	apiPortFlagDesc            = "port at which the api runs"
	apiKeysFlagDesc            = "api keys for the authorized endpoints"

	defaultOutputFileName = "claimer_config.json"
	defaultDBPath         = "./db/claimer.db"
	defaultAPIPort        = 10000
)

type generateConfigsParams struct {
	outputDir          string
	outputFileName     string
	dbPath             string
	rpcEndpoint        string
	wsEndpoint         string
	signerKeyPath      string
	indexerURL         string
	allowedCollections []string
	apiPort            uint32
	apiKeys            []string
}

func (p *generateConfigsParams) validateFlags() error {
	if !common.IsValidURL(p.rpcEndpoint) {
		return fmt.Errorf("invalid %s: %s", rpcEndpointFlag, p.rpcEndpoint)
	}

	if !common.IsValidURL(p.wsEndpoint) {
		return fmt.Errorf("invalid %s: %s", wsEndpointFlag, p.wsEndpoint)
	}

	if p.signerKeyPath == "" {
		return fmt.Errorf("%s is required", signerKeyPathFlag)
	}

	if len(p.apiKeys) == 0 {
		return fmt.Errorf("specify at least one %s", apiKeysFlag)
	}

	return nil
}

func (p *generateConfigsParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.outputDir, outputDirFlag, ".", outputDirFlagDesc)
	cmd.Flags().StringVar(&p.outputFileName, outputFileNameFlag, defaultOutputFileName, outputFileNameFlagDesc)
	cmd.Flags().StringVar(&p.dbPath, dbPathFlag, defaultDBPath, dbPathFlagDesc)
	cmd.Flags().StringVar(&p.rpcEndpoint, rpcEndpointFlag, "", rpcEndpointFlagDesc)
	cmd.Flags().StringVar(&p.wsEndpoint, wsEndpointFlag, "", wsEndpointFlagDesc)
	cmd.Flags().StringVar(&p.signerKeyPath, signerKeyPathFlag, "", signerKeyPathFlagDesc)
	cmd.Flags().StringVar(&p.indexerURL, indexerURLFlag, "", indexerURLFlagDesc)
	cmd.Flags().StringArrayVar(&p.allowedCollections, allowedCollectionsFlag, nil, allowedCollectionsFlagDesc)
	cmd.Flags().Uint32Var(&p.apiPort, apiPortFlag, defaultAPIPort, apiPortFlagDesc)
	cmd.Flags().StringArrayVar(&p.apiKeys, apiKeysFlag, nil, apiKeysFlagDesc)
}

func (p *generateConfigsParams) Execute() (string, error) {
	config := &core.AppConfig{
		DBPath: p.dbPath,
		Ledger: core.LedgerConfig{
			RPCEndpoint:   p.rpcEndpoint,
			WSEndpoint:    p.wsEndpoint,
			SignerKeyPath: p.signerKeyPath,
		},
		Inventory: core.InventoryConfig{
			IndexerURL:         p.indexerURL,
			AllowedCollections: p.allowedCollections,
		},
		API: core.APIConfig{
			Port:           p.apiPort,
			PathPrefix:     "api",
			AllowedHeaders: []string{"Content-Type", "X-API-Key"},
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			APIKeyHeader:   "x-api-key",
			APIKeys:        p.apiKeys,
		},
		Logger: core.LoggerConfig{
			LogLevel:    "INFO",
			LogFilePath: "./logs/claimer.log",
		},
	}

	config.FillOut()

	if err := config.Validate(); err != nil {
		return "", err
	}

	if err := common.CreateDirectoryIfNotExists(p.outputDir, 0o770); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	configPath := filepath.Join(p.outputDir, p.outputFileName)

	if err := common.SaveJson(configPath, config, true); err != nil {
		return "", fmt.Errorf("failed to save config: %w", err)
	}

	return configPath, nil
}
