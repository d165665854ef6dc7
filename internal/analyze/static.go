package analyze

import (
	"fmt"
	"io"
	"strings"

	"github.com/lakshaymaurya-felt/diskord/internal/core"
)

// PrintStatic writes a plain-text listing of entries. It is the fallback
// when stdout is not a terminal and the TUI cannot render. Entries whose
// name is in exclude are hidden from the listing but still count toward
// the total.
func PrintStatic(w io.Writer, root string, entries []ScanEntry, exclude []string, partial bool) {
	hidden := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		hidden[name] = true
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}

	fmt.Fprintf(w, "  Disk usage: %s\n", root)
	fmt.Fprintf(w, "  Total size: %s\n", core.FormatSize(total))
	if partial {
		fmt.Fprintln(w, "  (some directories could not be read; sizes are lower bounds)")
	}
	fmt.Fprintln(w, "  "+strings.Repeat("-", 58))

	if len(entries) == 0 {
		fmt.Fprintln(w, "  No data to display.")
		return
	}

	for _, e := range entries {
		if hidden[e.Name] {
			continue
		}
		name := e.Name
		if e.IsDir {
			name += "/"
		}
		fmt.Fprintf(w, "  %10s  %5.1f%%  %s\n",
			core.FormatSize(e.Size), e.Percentage(total), name)
	}

	fmt.Fprintln(w, "  "+strings.Repeat("-", 58))
}
