package cli

import (
	"fmt"
	"io"

	"github.com/marcelocantos/donegate/internal/gatefile"
)

// RunKinds lists the check kinds a gate file may use.
func RunKinds(w io.Writer) int {
	for _, k := range gatefile.Kinds() {
		fmt.Fprintf(w, "%-20s %s\n", k.Name, k.Description)
	}
	return ExitPass
}
