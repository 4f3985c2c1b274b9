package codec

import "time"

// ParseTime accepts RFC3339 with or without fractional seconds.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatTime renders t in UTC as RFC3339Nano (trailing zeros trimmed).
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
