package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
)

// ResolveMonth validates a YYYY-MM identifier. An empty month means the month of now.
func ResolveMonth(month string, now time.Time) (string, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return now.Format(types.MonthLayout), nil
	}

	t, err := time.Parse(types.MonthLayout, month)
	if err != nil || t.Format(types.MonthLayout) != month {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidMonth, month)
	}

	return month, nil
}

// IsUpToDate reports whether the latest pickup falls on today or later,
// comparing calendar dates only.
func IsUpToDate(latestPickup, now time.Time) bool {
	if latestPickup.IsZero() {
		return false
	}

	latest := time.Date(latestPickup.Year(), latestPickup.Month(), latestPickup.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return !latest.Before(today)
}
