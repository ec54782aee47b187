package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcelocantos/donegate/internal/gate"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func renderDecision(w io.Writer, d gate.Decision) {
	for _, r := range d.Results {
		var status string
		switch {
		case r.Errored():
			status = errorStyle.Render("ERROR") + " " + dimStyle.Render("("+r.Category+")")
		case r.Passed:
			status = passStyle.Render("PASS")
		default:
			status = failStyle.Render("FAIL")
		}
		fmt.Fprintf(w, "  %-32s %s\n", r.Name, status)
	}

	if d.CanClaim {
		fmt.Fprintf(w, "%s %s: OK to claim done\n", passStyle.Render("GATE PASSED"), d.Task)
		return
	}
	fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("GATE BLOCKED"), d.Task, strings.Join(d.Failed, ", "))
	fmt.Fprintln(w, dimStyle.Render("Do not report this task as complete."))
}
