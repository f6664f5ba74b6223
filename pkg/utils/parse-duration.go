package utils

import (
	"fmt"
	"time"
)

// ParseDurationString parses a config duration value like "15m" or
// "168h", wrapping the error with the offending value so config
// loading can report which entry is malformed.
func ParseDurationString(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", value, err)
	}
	return d, nil
}
