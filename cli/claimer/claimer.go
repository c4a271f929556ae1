package cliclaimer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ShellTrade/bridge-claimer/api"
	apiCore "github.com/ShellTrade/bridge-claimer/api/core"
	"github.com/ShellTrade/bridge-claimer/api/controllers"
	"github.com/ShellTrade/bridge-claimer/claimer/core"
	databaseaccess "github.com/ShellTrade/bridge-claimer/claimer/database_access"
	"github.com/ShellTrade/bridge-claimer/claimer/gate"
	"github.com/ShellTrade/bridge-claimer/claimer/processor"
	"github.com/ShellTrade/bridge-claimer/claimer/settlement"
	"github.com/ShellTrade/bridge-claimer/claimer/trigger"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/ShellTrade/bridge-claimer/inventory"
	"github.com/ShellTrade/bridge-claimer/logger"
	"github.com/ShellTrade/bridge-claimer/solana/ledger"
	"github.com/ShellTrade/bridge-claimer/telemetry"
	"github.com/spf13/cobra"
)

var initParamsData = &initParams{}

func GetRunClaimerCommand() *cobra.Command {
	runClaimerCmd := &cobra.Command{
		Use:     "run-claimer",
		Short:   "runs claimer component",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	initParamsData.setFlags(runClaimerCmd)

	return runClaimerCmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return initParamsData.validateFlags()
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := common.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	config, err := loadConfig(initParamsData)
	if err != nil {
		outputter.SetError(err)

		return
	}

	appLogger, err := logger.NewLogger(config.Logger)
	if err != nil {
		outputter.SetError(err)

		return
	}

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	telemetryInstance := telemetry.NewTelemetry(config.Telemetry, appLogger.Named("telemetry"))
	if err := telemetryInstance.Start(); err != nil {
		outputter.SetError(err)

		return
	}

	defer func() {
		if err := telemetryInstance.Close(context.Background()); err != nil {
			appLogger.Error("error while closing telemetry", "err", err)
		}
	}()

	repository, err := databaseaccess.NewDatabase(config.DBPath)
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to open claimer database: %w", err))

		return
	}

	defer func() {
		if err := repository.Close(); err != nil {
			appLogger.Error("error while closing database", "err", err)
		}
	}()

	ledgerAdapter, chainClient, err := ledger.NewLedgerFromConfig(
		ctx, config.Ledger, appLogger.Named("ledger"))
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to create ledger client: %w", err))

		return
	}

	defer chainClient.Close()

	inventoryClient := inventory.NewIndexerClient(config.Inventory, appLogger.Named("inventory"))

	claimGate := gate.NewGate(repository, config.Gate, appLogger.Named("gate"))
	strategy := settlement.NewSettlementStrategy(
		ledgerAdapter, inventoryClient, config.Settlement, appLogger.Named("settlement"))
	claimProcessor := processor.NewClaimProcessor(
		claimGate, strategy, repository, appLogger.Named("processor"))
	claimTrigger := trigger.NewTrigger(
		claimProcessor, repository, config.Trigger, appLogger.Named("trigger"))

	apiServer, err := api.NewAPI(ctx, config.API, []apiCore.APIController{
		controllers.NewClaimsController(repository, claimTrigger.Notify, appLogger.Named("api")),
	}, appLogger.Named("api"))
	if err != nil {
		outputter.SetError(fmt.Errorf("failed to create api: %w", err))

		return
	}

	go apiServer.Start()

	defer func() {
		if err := apiServer.Dispose(); err != nil {
			appLogger.Error("error while disposing api", "err", err)
		}
	}()

	triggerDoneCh := make(chan struct{})

	go func() {
		claimTrigger.Start(ctx)
		close(triggerDoneCh)
	}()

	appLogger.Info("claimer started", "signer", ledgerAdapter.SignerAddress())

	signalChannel := make(chan os.Signal, 1)
	// Notify the signalChannel when the interrupt signal is received (Ctrl+C)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)

	select {
	case <-signalChannel:
	case <-ctx.Done():
	}

	cancelCtx()
	<-triggerDoneCh

	outputter.SetCommandResult(&CmdResult{})
}

func loadConfig(initParamsData *initParams) (*core.AppConfig, error) {
	config, err := common.LoadConfig[core.AppConfig](initParamsData.config, "claimer")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config.FillOut()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
