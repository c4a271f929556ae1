package core

import (
	"fmt"
	"time"

	"github.com/ShellTrade/bridge-claimer/common"
)

// RetryPolicy is a fixed-delay retry budget, injected per operation kind.
type RetryPolicy struct {
	MaxAttempts int           `json:"maxAttempts"`
	Delay       time.Duration `json:"delay"`
}

type LedgerConfig struct {
	RPCEndpoint string `json:"rpcEndpoint"`
	WSEndpoint  string `json:"wsEndpoint"`
	// SignerKeyPath points to the solana keygen file holding the
	// mint/transfer authority for the settlement wallet
	SignerKeyPath string `json:"signerKeyPath"`
	// FungibleAccountRetry guards account preparation on the fungible
	// mint path, CollectibleAccountRetry and BatchSubmitRetry guard the
	// collectible transfer path
	FungibleAccountRetry    RetryPolicy `json:"fungibleAccountRetry"`
	CollectibleAccountRetry RetryPolicy `json:"collectibleAccountRetry"`
	BatchSubmitRetry        RetryPolicy `json:"batchSubmitRetry"`
	// AccountPreparePause and BatchSubmitPause are the fixed pauses between
	// dependent ledger steps, allowing upstream finality
	AccountPreparePause time.Duration `json:"accountPreparePause"`
	BatchSubmitPause    time.Duration `json:"batchSubmitPause"`
}

type InventoryConfig struct {
	IndexerURL string `json:"indexerUrl"`
	APIKey     string `json:"apiKey"`
	// AllowedCollections is the verified collection allow-list; collectibles
	// outside of it are never accepted as settlement inventory
	AllowedCollections []string `json:"allowedCollections"`
}

type GateConfig struct {
	// LeaseDuration bounds how long a claim may sit inprogress before it is
	// considered abandoned and eligible for reselection
	LeaseDuration time.Duration `json:"leaseDuration"`
}

type TriggerConfig struct {
	// TickTime is the fallback poll interval in case a change notification
	// is lost
	TickTime time.Duration `json:"tickTime"`
}

type SettlementConfig struct {
	// EnableMintOnDemand turns on minting the collectible shortfall inline.
	// Unsafe while a single settlement slot is held open: minting is a slow
	// multi-confirmation sequence. Off unless exclusivity is relaxed.
	EnableMintOnDemand bool `json:"enableMintOnDemand"`
}

type APIConfig struct {
	Port           uint32   `json:"port"`
	PathPrefix     string   `json:"pathPrefix"`
	AllowedHeaders []string `json:"allowedHeaders"`
	AllowedOrigins []string `json:"allowedOrigins"`
	AllowedMethods []string `json:"allowedMethods"`
	APIKeyHeader   string   `json:"apiKeyHeader"`
	APIKeys        []string `json:"apiKeys"`
}

type LoggerConfig struct {
	LogLevel    string `json:"logLevel"`
	LogFilePath string `json:"logFilePath"`
}

type TelemetryConfig struct {
	// PrometheusAddr empty means disabled otherwise something like 0.0.0.0:5001
	PrometheusAddr string `json:"prometheusAddr"`
	// DataDogAddr empty means disabled otherwise something like localhost:8126
	DataDogAddr string `json:"dataDogAddr"`
}

type AppConfig struct {
	DBPath     string           `json:"dbPath"`
	Ledger     LedgerConfig     `json:"ledger"`
	Inventory  InventoryConfig  `json:"inventory"`
	Gate       GateConfig       `json:"gate"`
	Trigger    TriggerConfig    `json:"trigger"`
	Settlement SettlementConfig `json:"settlement"`
	API        APIConfig        `json:"api"`
	Telemetry  TelemetryConfig  `json:"telemetry"`
	Logger     LoggerConfig     `json:"logger"`
}

const (
	defaultLeaseDuration = 10 * time.Minute
	defaultTickTime      = 30 * time.Second
)

// FillOut applies the default retry budgets and timings for every setting
// left at zero. Attempts and delay default independently, so a config that
// pins only one of them still gets a usable policy.
func (config *AppConfig) FillOut() {
	fillOutRetryPolicy(&config.Ledger.FungibleAccountRetry, RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second})
	fillOutRetryPolicy(&config.Ledger.CollectibleAccountRetry, RetryPolicy{MaxAttempts: 5, Delay: 10 * time.Second})
	fillOutRetryPolicy(&config.Ledger.BatchSubmitRetry, RetryPolicy{MaxAttempts: 5, Delay: 10 * time.Second})

	if config.Ledger.AccountPreparePause == 0 {
		config.Ledger.AccountPreparePause = 2 * time.Second
	}

	if config.Ledger.BatchSubmitPause == 0 {
		config.Ledger.BatchSubmitPause = 5 * time.Second
	}

	if config.Gate.LeaseDuration == 0 {
		config.Gate.LeaseDuration = defaultLeaseDuration
	}

	if config.Trigger.TickTime == 0 {
		config.Trigger.TickTime = defaultTickTime
	}
}

func fillOutRetryPolicy(policy *RetryPolicy, defaults RetryPolicy) {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}

	if policy.Delay <= 0 {
		policy.Delay = defaults.Delay
	}
}

func (config *AppConfig) Validate() error {
	if config.DBPath == "" {
		return fmt.Errorf("dbPath is required")
	}

	if !common.IsValidURL(config.Ledger.RPCEndpoint) {
		return fmt.Errorf("invalid ledger rpc endpoint: %s", config.Ledger.RPCEndpoint)
	}

	if config.Inventory.IndexerURL != "" && !common.IsValidURL(config.Inventory.IndexerURL) {
		return fmt.Errorf("invalid inventory indexer url: %s", config.Inventory.IndexerURL)
	}

	for name, policy := range map[string]RetryPolicy{
		"fungibleAccountRetry":    config.Ledger.FungibleAccountRetry,
		"collectibleAccountRetry": config.Ledger.CollectibleAccountRetry,
		"batchSubmitRetry":        config.Ledger.BatchSubmitRetry,
	} {
		if policy.MaxAttempts <= 0 || policy.Delay <= 0 {
			return fmt.Errorf("%s requires positive maxAttempts and delay, got %d and %s",
				name, policy.MaxAttempts, policy.Delay)
		}
	}

	return nil
}
