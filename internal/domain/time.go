package domain

import "time"

// Timestamp formats t the way every timestamp column is stored.
func Timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func ParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
