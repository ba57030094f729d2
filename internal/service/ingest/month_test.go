package ingest

import (
	"testing"
	"time"
)

func TestIsUpToDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		latest time.Time
		want   bool
	}{
		{"zero", time.Time{}, false},
		{"yesterday", now.AddDate(0, 0, -1), false},
		{"earlier today", time.Date(2024, 3, 15, 0, 5, 0, 0, time.UTC), true},
		{"later today", time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC), true},
		{"future", now.AddDate(0, 1, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUpToDate(tt.latest, now); got != tt.want {
				t.Fatalf("IsUpToDate(%v) = %v, want %v", tt.latest, got, tt.want)
			}
		})
	}
}

func TestResolveMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	got, err := ResolveMonth("", now)
	if err != nil || got != "2024-03" {
		t.Fatalf("ResolveMonth(\"\") = %q, %v", got, err)
	}

	got, err = ResolveMonth(" 2023-11 ", now)
	if err != nil || got != "2023-11" {
		t.Fatalf("ResolveMonth(2023-11) = %q, %v", got, err)
	}
}
