package main

import "github.com/pawlette/pawlette/internal/commands"

// Version information set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Execute()
}
