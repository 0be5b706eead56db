package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKeyLayout defines the canonical upstream date key format (YYYYMMDD).
const DateKeyLayout = "20060102"

// ParseDateKey parses a YYYYMMDD date key.
func ParseDateKey(value string) (time.Time, error) {
	return time.Parse(DateKeyLayout, value)
}

// FormatDateKey formats a time as YYYYMMDD in its current location.
func FormatDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// DateKeysBetween returns every date key from start to end inclusive, in
// chronological order. Returns nil when start is after end.
func DateKeysBetween(start, end time.Time) []string {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if start.After(end) {
		return nil
	}

	var keys []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, FormatDateKey(d))
	}
	return keys
}

// ParseClock parses a game clock in MM:SS form into a duration.
func ParseClock(clock string) (time.Duration, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid clock %q", clock)
	}
	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
