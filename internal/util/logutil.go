package util

import (
	"fmt"
	"strings"
	"time"
)

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// TimeAgo renders a timestamp as a coarse relative label for history
// listings.
func TimeAgo(t, now time.Time) string {
	hours := int(now.Sub(t).Hours())
	if hours < 1 {
		return "Just now"
	}
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}

	return t.Format("2006-01-02")
}
