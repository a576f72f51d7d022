package main

import (
	"os"

	"github.com/wonny/rrg/cmd/rrg/commands"
)

// main is the entry point for the RRG CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/rrg [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
