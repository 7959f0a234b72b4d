package main

import (
	"os"

	"github.com/wonny/tradeblocks/cmd/blocks/commands"
)

// main is the entry point for the tradeblocks CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/blocks [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
