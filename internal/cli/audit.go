package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/marcelocantos/donegate/internal/audit"
)

// RunAudit handles the donegate audit subcommand.
func RunAudit(w io.Writer, logPath string, args []string, asJSON bool) int {
	if len(args) == 0 {
		fmt.Fprintln(w, "usage: donegate audit <tail [n]|summary>")
		return ExitError
	}

	switch args[0] {
	case "show", "tail":
		n := 20
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v <= 0 {
				fmt.Fprintf(w, "donegate audit: invalid count %q\n", args[1])
				return ExitError
			}
			n = v
		}
		entries, err := audit.Tail(logPath, n)
		if err != nil {
			fmt.Fprintf(w, "donegate audit: %v\n", err)
			return ExitError
		}
		if len(entries) == 0 {
			fmt.Fprintln(w, "no audit entries")
			return ExitPass
		}
		for _, e := range entries {
			if asJSON {
				data, _ := json.Marshal(e)
				fmt.Fprintf(w, "%s\n", data)
				continue
			}
			fmt.Fprintln(w, e.String())
		}
		return ExitPass

	case "summary":
		s, err := audit.Summarize(logPath)
		if err != nil {
			fmt.Fprintf(w, "donegate audit: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(w, "%s: %d entries", logPath, s.Entries)
		if s.Skipped > 0 {
			fmt.Fprintf(w, " (%d unparseable lines)", s.Skipped)
		}
		fmt.Fprintln(w)
		for _, l := range audit.Levels {
			if n := s.Counts[l]; n > 0 {
				fmt.Fprintf(w, "  %-8s %d\n", l, n)
			}
		}
		return ExitPass

	default:
		fmt.Fprintf(w, "donegate audit: unknown subcommand %q\n", args[0])
		return ExitError
	}
}
