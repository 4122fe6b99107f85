package domain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"
)

// utcOffsetRe matches signed "±HH:MM" offset strings.
var utcOffsetRe = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// StationInfo is the metadata the station directory knows about a gauging
// station. A zero StationNo means the station is unknown.
type StationInfo struct {
	StationNo string
	Name      string
	UTCOffset time.Duration
}

// StationDirectory resolves station metadata, notably the standard UTC
// offset used to anchor a station's local observation times.
type StationDirectory interface {
	Lookup(ctx context.Context, stationNo string) (StationInfo, error)
}

// ResolveUTCOffset returns the station's standard UTC offset from the
// directory. A nil directory, a lookup failure or an unknown station fall
// back to the supplied default (graceful degradation); failures are logged,
// never propagated.
func ResolveUTCOffset(ctx context.Context, stationNo string, dir StationDirectory, fallback time.Duration, logger *slog.Logger) time.Duration {
	if dir == nil || stationNo == "" {
		return fallback
	}

	info, err := dir.Lookup(ctx, stationNo)
	if err != nil {
		logger.Warn("station lookup failed, using default UTC offset",
			"station_no", stationNo,
			"error", err,
		)
		return fallback
	}
	if info.StationNo == "" {
		return fallback
	}
	return info.UTCOffset
}

// ParseUTCOffset parses a signed "±HH:MM" offset string.
func ParseUTCOffset(value string) (time.Duration, error) {
	m := utcOffsetRe.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf("invalid UTC offset %q, want ±HH:MM", value)
	}

	hours, _ := strconv.Atoi(m[2])
	mins, _ := strconv.Atoi(m[3])
	d := time.Duration(hours)*time.Hour + time.Duration(mins)*time.Minute
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}

// FormatUTCOffset renders a duration as a signed "±HH:MM" string.
func FormatUTCOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("%s%02d:%02d", sign, int(d.Hours()), int(d.Minutes())%60)
}
