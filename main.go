package main

import (
	"github.com/ShellTrade/bridge-claimer/cli"
)

func main() {
	cli.NewRootCommand().Execute()
}
