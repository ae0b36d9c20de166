package timing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// NoTimeSentinel is what the timing provider sends when a competitor has
// no recorded time yet.
const NoTimeSentinel = "00:59:59.999"

// ParseTime converts a "HH:MM:SS.mmm" string into a millisecond count.
// The empty string and the no-time sentinel both map to 0. Shorter clock
// forms ("MM:SS", "SS.mmm") are padded on the left. A string that does
// not parse also maps to 0; the failure is logged, never returned.
func ParseTime(s string, logger zerolog.Logger) int {
	if s == "" || s == NoTimeSentinel {
		return 0
	}

	clock := s
	ms := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		clock = s[:i]
		var err error
		ms, err = strconv.Atoi(s[i+1:])
		if err != nil {
			logger.Error().Msgf("cannot convert time '%s': %v", s, err)
			return 0
		}
	}

	parts := strings.Split(clock, ":")
	if len(parts) > 3 {
		logger.Error().Msgf("cannot convert time '%s': too many clock components", s)
		return 0
	}
	for len(parts) < 3 {
		parts = append([]string{"0"}, parts...)
	}

	var hms [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			logger.Error().Msgf("cannot convert time '%s': %v", s, err)
			return 0
		}
		hms[i] = n
	}

	return hms[0]*60*60*1000 + hms[1]*60*1000 + hms[2]*1000 + ms
}

// FormatDiff renders a millisecond gap as "+SS.mmm", "+MM:SS.mmm" or
// "+HH:MM:SS.mmm", whichever is the shortest form that fits. A gap of 0
// renders as the empty string.
func FormatDiff(ms int) string {
	if ms <= 0 {
		return ""
	}

	hours := ms / (60 * 60 * 1000)
	minutes := (ms % (60 * 60 * 1000)) / (60 * 1000)
	seconds := (ms % (60 * 1000)) / 1000
	millis := ms % 1000

	switch {
	case hours > 0:
		return fmt.Sprintf("+%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
	case minutes > 0:
		return fmt.Sprintf("+%02d:%02d.%03d", minutes, seconds, millis)
	default:
		return fmt.Sprintf("+%02d.%03d", seconds, millis)
	}
}
