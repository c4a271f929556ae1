package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type ICommandResult interface {
	GetOutput() string
}

// OutputFormatter collects a command's result or error and writes it once,
// usually through a deferred WriteOutput.
type OutputFormatter struct {
	commandOutput io.Writer
	errorOutput   io.Writer

	err    error
	result ICommandResult
}

func InitializeOutputter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		commandOutput: cmd.OutOrStdout(),
		errorOutput:   cmd.ErrOrStderr(),
	}
}

func (o *OutputFormatter) SetError(err error) {
	o.err = err
}

func (o *OutputFormatter) SetCommandResult(result ICommandResult) {
	o.result = result
}

func (o *OutputFormatter) WriteOutput() {
	if o.err != nil {
		_, _ = fmt.Fprintln(o.errorOutput, o.err.Error())

		return
	}

	if o.result != nil {
		_, _ = fmt.Fprintln(o.commandOutput, o.result.GetOutput())
	}
}

// FormatKV renders "key|value" rows as two aligned columns.
func FormatKV(rows []string) string {
	keyWidth := 0
	pairs := make([][2]string, 0, len(rows))

	for _, row := range rows {
		key, value, _ := strings.Cut(row, "|")
		if len(key) > keyWidth {
			keyWidth = len(key)
		}

		pairs = append(pairs, [2]string{key, value})
	}

	var builder strings.Builder

	for i, pair := range pairs {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString(fmt.Sprintf("%-*s = %s", keyWidth, pair[0], pair[1]))
	}

	return builder.String()
}
