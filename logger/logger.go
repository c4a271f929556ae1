package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/hashicorp/go-hclog"
)

// NewLogger builds the process logger. With a file path configured the log
// stream goes both to stdout and to the file.
func NewLogger(config core.LoggerConfig) (hclog.Logger, error) {
	level := hclog.LevelFromString(config.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	var output io.Writer = os.Stdout

	if config.LogFilePath != "" {
		if err := common.CreateDirectoryIfNotExists(filepath.Dir(config.LogFilePath), 0o770); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		logFile, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		output = io.MultiWriter(os.Stdout, logFile)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "bridge-claimer",
		Level:  level,
		Output: output,
	}), nil
}
