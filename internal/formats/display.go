package formats

import (
	"fmt"
	"strconv"
)

// CompactCount renders a count the way the watch page does: 1.2K, 3.4M,
// 5.6B.
func CompactCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// HumanReadableSize renders a byte count with binary units.
func HumanReadableSize(bytes int64) string {
	const (
		kib = 1024.0
		mib = kib * 1024
		gib = mib * 1024
	)
	b := float64(bytes)
	switch {
	case b >= gib:
		return fmt.Sprintf("%.2fGiB", b/gib)
	case b >= mib:
		return fmt.Sprintf("%.2fMiB", b/mib)
	case b >= kib:
		return fmt.Sprintf("%.2fKiB", b/kib)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// Resolution renders height x width, or "" when either side is unknown.
func Resolution(height, width int) string {
	if height <= 0 || width <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", height, width)
}
