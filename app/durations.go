package app

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	durationPartRE = regexp.MustCompile(`(\d+)([wdhms])`)
	durationUnits  = map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	}
)

// ParseDuration understands days and weeks on top of h, m and s.
// Fractions are not supported.
func ParseDuration(dur string) (time.Duration, error) {
	parts := durationPartRE.FindAllStringSubmatch(dur, -1)
	if len(parts) == 0 {
		return 0, fmt.Errorf("invalid duration: %q", dur)
	}
	var result time.Duration
	for _, part := range parts {
		incr, err := strconv.Atoi(part[1])
		if err != nil {
			return 0, err
		}
		result += time.Duration(incr) * durationUnits[part[2]]
	}
	return result, nil
}
