package telemetry

import (
	"time"

	"github.com/armon/go-metrics"
)

const (
	claimerMetricsPrefix   = "claimer"
	ledgerMetricsPrefix    = "ledger"
	inventoryMetricsPrefix = "inventory"
)

func UpdateClaimsConfirmedCounter(symbol string, cnt int) {
	metrics.IncrCounter([]string{claimerMetricsPrefix, "claims_confirmed_counter", symbol}, float32(cnt))
}

func UpdateClaimsFailedCounter(symbol string, cnt int) {
	metrics.IncrCounter([]string{claimerMetricsPrefix, "claims_failed_counter", symbol}, float32(cnt))
}

func UpdateClaimsReclaimedCounter(cnt int) {
	metrics.IncrCounter([]string{claimerMetricsPrefix, "claims_reclaimed_counter"}, float32(cnt))
}

func UpdateSettlementDuration(duration time.Duration) {
	metrics.SetGauge([]string{claimerMetricsPrefix, "settlement_duration_ms"}, float32(duration.Milliseconds()))
}

func UpdateLedgerRetryCounter(op string, cnt int) {
	metrics.IncrCounter([]string{ledgerMetricsPrefix, "retry_counter", op}, float32(cnt))
}

func UpdateInventoryLookupCounter(cnt int) {
	metrics.IncrCounter([]string{inventoryMetricsPrefix, "lookup_counter"}, float32(cnt))
}
