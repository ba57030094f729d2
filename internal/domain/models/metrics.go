package models

import "time"

// MetricsRecord is the persisted snapshot of one ingestion run.
type MetricsRecord struct {
	AveragePricePerMile float64        `json:"average_price_per_mile"`
	PaymentTypeCounts   map[string]int `json:"payment_type_counts"`
	CustomIndicator     float64        `json:"custom_indicator"`
}

// TotalTrips is the number of cleaned rows the record was computed from.
func (m MetricsRecord) TotalTrips() int {
	total := 0
	for _, n := range m.PaymentTypeCounts {
		total += n
	}
	return total
}

// AggregateView is the mean of every stored metrics record. Payment counts are
// averaged per code.
type AggregateView struct {
	AveragePricePerMile float64            `json:"average_price_per_mile"`
	PaymentTypeCounts   map[string]float64 `json:"payment_type_counts"`
	CustomIndicator     float64            `json:"custom_indicator"`
}

// MetricsFile is a metrics record together with the file it was read from.
type MetricsFile struct {
	Name    string
	Date    time.Time
	Record  MetricsRecord
	ModTime time.Time
}

// SkippedFile describes a metrics file the aggregator could not use.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type AggregateResult struct {
	View    AggregateView
	Files   []MetricsFile
	Skipped []SkippedFile
}
