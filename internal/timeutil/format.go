// Package timeutil formats timestamps for session lists.
package timeutil

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders how long ago t was, in the loose style of
// chat sidebars. Zero times render as an empty string.
func FormatRelativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	age := now.Sub(t)
	if age < 0 {
		age = 0
	}

	seconds := int(age.Seconds())
	minutes := int(age.Minutes())
	hours := int(age.Hours())
	days := int(age.Hours() / 24)

	switch {
	case seconds < 30:
		return "just now"
	case seconds < 90:
		return "a minute ago"
	case minutes < 45:
		return fmt.Sprintf("%d minutes ago", minutes)
	case minutes < 90:
		return "an hour ago"
	case hours < 24:
		return fmt.Sprintf("%d hours ago", hours)
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2")
	}
}
