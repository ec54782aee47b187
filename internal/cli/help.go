package cli

import (
	_ "embed"
	"fmt"
	"io"
)

//go:embed help_agent.md
var helpAgent string

// RunHelpAgent prints the guide for agents that must gate their own
// completion claims.
func RunHelpAgent(w io.Writer) int {
	fmt.Fprint(w, helpAgent)
	return ExitPass
}
