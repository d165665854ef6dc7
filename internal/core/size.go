package core

import "fmt"

const (
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
	tib = gib * 1024
)

// FormatSize returns a human-readable size using binary units
// ("512 B", "1.5 KB", "3.2 GB"). Negative sizes render as "0 B".
func FormatSize(bytes int64) string {
	switch {
	case bytes < 0:
		return "0 B"
	case bytes >= tib:
		return fmt.Sprintf("%.1f TB", float64(bytes)/float64(tib))
	case bytes >= gib:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gib))
	case bytes >= mib:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mib))
	case bytes >= kib:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kib))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
