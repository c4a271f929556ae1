package cliversion

import (
	"bytes"
	"fmt"

	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/ShellTrade/bridge-claimer/versioning"
	"github.com/spf13/cobra"
)

func GetVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Returns the current bridge-claimer version",
		Args:  cobra.NoArgs,
		Run:   runCommand,
	}
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := common.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	outputter.SetCommandResult(
		&versionCmdResult{
			Version:   versioning.Version,
			Commit:    versioning.Commit,
			Branch:    versioning.Branch,
			BuildTime: versioning.BuildTime,
		},
	)
}

type versionCmdResult struct {
	Version   string
	Commit    string
	Branch    string
	BuildTime string
}

func (r versionCmdResult) GetOutput() string {
	var buffer bytes.Buffer

	_, _ = buffer.WriteString(common.FormatKV([]string{
		fmt.Sprintf("Version|%s", r.Version),
		fmt.Sprintf("Commit|%s", r.Commit),
		fmt.Sprintf("Branch|%s", r.Branch),
		fmt.Sprintf("Build Time|%s", r.BuildTime),
	}))

	return buffer.String()
}
