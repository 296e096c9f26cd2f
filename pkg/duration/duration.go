// Package duration parses compact "1h30m" style durations into seconds.
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxSeconds caps parsed values at roughly one hundred years.
const MaxSeconds int64 = 100 * 365 * 24 * 60 * 60

var (
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrUnknownUnit      = errors.New("unknown duration unit")
	ErrDurationTooLarge = errors.New("duration too large")
)

var segmentPattern = regexp.MustCompile(`(\d{1,5})([hsmd])`)

var unitSeconds = map[string]float64{
	"h": 3600,
	"s": 1,
	"m": 60,
	"d": 86400,
}

// Parse converts input such as "1h30m", "2d" or "90" into whole seconds.
// Every <number><unit> segment found in the lower-cased input is summed.
// Input without any segment must be a plain integer count of seconds.
func Parse(input string) (int64, error) {
	lowered := strings.ToLower(input)
	matches := segmentPattern.FindAllStringSubmatch(lowered, -1)

	if len(matches) == 0 {
		trimmed := strings.TrimSpace(lowered)
		value, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		if value > MaxSeconds {
			return 0, fmt.Errorf("%w: %d seconds", ErrDurationTooLarge, value)
		}
		return value, nil
	}

	var total float64
	for _, match := range matches {
		count, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, match[0])
		}
		seconds, ok := unitSeconds[match[2]]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, match[2])
		}
		total += count * seconds
	}

	if total > float64(MaxSeconds) {
		return 0, fmt.Errorf("%w: %q", ErrDurationTooLarge, input)
	}
	return int64(total), nil
}

func ToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
