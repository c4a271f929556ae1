package cligenerateconfigs

import (
	"fmt"
)

type CmdResult struct {
	ConfigPath string
}

func (r CmdResult) GetOutput() string {
	return fmt.Sprintf("config written to %s", r.ConfigPath)
}
