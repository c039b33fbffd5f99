package utils

import (
	"time"
)

const layoutDateTime = "2006-01-02 15:04"

// NowUTC returns current time in UTC, truncated to the millisecond
// precision the database stores.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// FormatDateTime formats t as "YYYY-MM-DD HH:MM" UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(layoutDateTime) + " UTC"
}
