package types

import (
	"maps"
	"strconv"
)

type ServiceMode string

// Server - HTTP dashboard, JSON API and compute trigger, optional scheduler
// Refresh - one ingestion run for a month, then exit
const (
	ServerMode  ServiceMode = "server"
	RefreshMode ServiceMode = "refresh"
)

// Outcome of an ingestion run
type IngestionStatus string

func (s IngestionStatus) String() string {
	return string(s)
}

const (
	StatusUpToDate IngestionStatus = "up to date"
	StatusComputed IngestionStatus = "computed"
	StatusFailed   IngestionStatus = "failed"
)

// History store drivers
const (
	HistoryNone     = "none"
	HistorySqlite   = "sqlite"
	HistoryPostgres = "postgres"
)

// Role carried in admin tokens
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const AdminRole UserRole = "ADMIN"

const (
	// MonthLayout is the reference layout of a month identifier (YYYY-MM).
	MonthLayout = "2006-01"
	// MonthPlaceholder is substituted with the month in the source URL template.
	MonthPlaceholder = "{month}"
	// MetricsFileSuffix follows the YYYYMMDD date in a metrics file name.
	MetricsFileSuffix = "_yellow_taxi_kpis.json"
	MetricsDateLayout = "20060102"
)

// Dataset column names as published by the TLC.
const (
	ColVendorID     = "VendorID"
	ColFareAmount   = "fare_amount"
	ColTotalAmount  = "total_amount"
	ColTripDistance = "trip_distance"
	ColTipAmount    = "tip_amount"
	ColExtra        = "extra"
	ColPaymentType  = "payment_type"
	ColPickup       = "tpep_pickup_datetime"
)

// MetricColumns lists every column the metrics need, in dataframe order.
var MetricColumns = []string{
	ColVendorID,
	ColFareAmount,
	ColTotalAmount,
	ColTripDistance,
	ColTipAmount,
	ColExtra,
	ColPaymentType,
}

var paymentTypeLabels = map[string]string{
	"1": "Credit card",
	"2": "Cash",
	"3": "No charge",
	"4": "Dispute",
	"5": "Unknown",
	"6": "Voided trip",
}

// PaymentTypeLabels returns a copy of the known code to name table.
func PaymentTypeLabels() map[string]string {
	return maps.Clone(paymentTypeLabels)
}

// PaymentTypeLabel returns a human name for a payment code. Codes outside the
// known set are shown as-is.
func PaymentTypeLabel(code string) string {
	if label, ok := paymentTypeLabels[code]; ok {
		return label
	}
	if _, err := strconv.Atoi(code); err == nil {
		return "Code " + code
	}
	return code
}

// Dashboard push message types
const (
	DashboardAggregate = "aggregate"
	DashboardNoData    = "no_data"
)
