package duration

import (
	"strconv"
	"strings"
)

var spanUnits = []struct {
	name    string
	seconds int64
}{
	{"year", 365 * 86400},
	{"week", 7 * 86400},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
	{"second", 1},
}

// Format spells out seconds, e.g. 5400 -> "1 hour and 30 minutes".
func Format(seconds int64) string {
	if seconds <= 0 {
		return "0 seconds"
	}
	var parts []string
	for _, unit := range spanUnits {
		count := seconds / unit.seconds
		if count == 0 {
			continue
		}
		seconds -= count * unit.seconds
		part := strconv.FormatInt(count, 10) + " " + unit.name
		if count != 1 {
			part += "s"
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
