// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Config string `short:"c" default:"butler.toml" help:"Config file path"`

	Dispatch DispatchCmd `cmd:"" help:"Dispatch one message and print the reply"`
	Serve    ServeCmd    `cmd:"" help:"Serve inbound messages from the NATS bus"`
	Replay   ReplayCmd   `cmd:"" help:"Replay a session for forensic analysis"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// DispatchCmd handles a single message and exits.
type DispatchCmd struct {
	Message string `arg:"" help:"Message text to dispatch"`
	Context string `default:"cli" help:"Conversation context id"`
	JSON    bool   `help:"Print the full dispatch result as JSON"`
}

// ServeCmd runs the dispatch loop against NATS.
type ServeCmd struct {
	Queue string `default:"butler" help:"NATS queue group"`
}

// ReplayCmd replays a session record.
type ReplayCmd struct {
	Session string `arg:"" help:"Session id or JSONL file path"`
	Verbose bool   `short:"v" help:"Show full message and output content"`
	NoPager bool   `help:"Disable pager for output"`
	Follow  bool   `short:"f" help:"Follow a session that is still running"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
