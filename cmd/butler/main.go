// Package main is the entry point for the butler dispatch backend.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// Load .env for API keys and other env vars
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("butler"),
		kong.Description("Conversational dispatch backend: fast-path routing, LLM planning, supervised execution."),
		kong.UsageOnError(),
		kongVars(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}

// Run for VersionCmd lives here next to the build variables.
func (v *VersionCmd) Run(cli *CLI) error {
	fmt.Printf("butler version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
