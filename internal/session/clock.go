package session

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeControl parses a "base+increment" descriptor, base in
// minutes and increment in seconds, into milliseconds. Parsed once at
// session creation and never reparsed.
func ParseTimeControl(tc string) (baseMs, incrementMs int64, err error) {
	parts := strings.Split(strings.TrimSpace(tc), "+")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("time control %q: want base+increment", tc)
	}
	base, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || base < 1 || base > 180 {
		return 0, 0, fmt.Errorf("time control %q: bad base minutes", tc)
	}
	inc, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || inc < 0 || inc > 60 {
		return 0, 0, fmt.Errorf("time control %q: bad increment seconds", tc)
	}
	return int64(base) * 60_000, int64(inc) * 1000, nil
}

// BaseMinutes returns the base minutes of a descriptor, or 0 when it
// does not parse. Used for rating-format bucketing.
func BaseMinutes(tc string) int {
	baseMs, _, err := ParseTimeControl(tc)
	if err != nil {
		return 0
	}
	return int(baseMs / 60_000)
}
