package storage

import "fmt"

// FormatSize converts bytes to a human-readable string using 1024 based
// units with one decimal, e.g. "30.0 B" or "1.5 KB".
func FormatSize(b int64) string {
	size := float64(b)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
