package cli

import (
	"fmt"
	"os"

	cliclaimer "github.com/ShellTrade/bridge-claimer/cli/claimer"
	cligenerateconfigs "github.com/ShellTrade/bridge-claimer/cli/generateconfigs"
	cliversion "github.com/ShellTrade/bridge-claimer/cli/version"
	"github.com/spf13/cobra"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Short: "cli commands for bridge claimer",
		},
	}

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		cliclaimer.GetRunClaimerCommand(),
		cligenerateconfigs.GetGenerateConfigsCommand(),
		cliversion.GetVersionCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
