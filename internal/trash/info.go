package trash

import (
	"fmt"
	"io"
	"time"
)

const (
	infoHeader     = "[Trash Info]"
	infoExt        = ".trashinfo"
	infoTimeLayout = "2006-01-02T15:04:05"
)

// Info is the content of one sidecar record.
type Info struct {
	Path         string
	DeletionDate time.Time
}

// WriteTo writes the sidecar in the desktop trash format.
func (i Info) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "%s\nPath=%s\nDeletionDate=%s\n",
		infoHeader, i.Path, i.DeletionDate.Format(infoTimeLayout))
	return int64(n), err
}
