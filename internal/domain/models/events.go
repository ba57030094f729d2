package models

import (
	"time"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
)

// MetricsComputedMessage is published after a refresh persisted new metrics.
type MetricsComputedMessage struct {
	RunID       string        `json:"run_id"`
	Month       string        `json:"month"`
	MetricsFile string        `json:"metrics_file"`
	Metrics     MetricsRecord `json:"metrics"`
	ComputedAt  time.Time     `json:"computed_at"`
}

// DashboardUpdateMessage is pushed to live dashboard clients.
type DashboardUpdateMessage struct {
	Type      string         `json:"type"`
	Data      *AggregateView `json:"data,omitempty"`
	Files     int            `json:"files"`
	Skipped   int            `json:"skipped"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewDashboardUpdate builds the push message for an aggregation outcome. A nil
// res or a non-nil err produce a no_data message.
func NewDashboardUpdate(res *AggregateResult, err error, now time.Time) DashboardUpdateMessage {
	msg := DashboardUpdateMessage{
		Type:      types.DashboardAggregate,
		Timestamp: now,
	}
	if res != nil {
		msg.Files = len(res.Files)
		msg.Skipped = len(res.Skipped)
	}
	if err != nil || res == nil {
		msg.Type = types.DashboardNoData
		if err != nil {
			msg.Message = err.Error()
		}
		return msg
	}

	view := res.View
	msg.Data = &view
	return msg
}
