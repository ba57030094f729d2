package models

import (
	"time"

	"github.com/go-gota/gota/dataframe"
)

// TripRecord is one row of the monthly yellow-taxi dataset. Every field is
// nullable in the published files.
type TripRecord struct {
	VendorID     *int64
	PickupTime   *time.Time
	FareAmount   *float64
	TotalAmount  *float64
	TripDistance *float64
	TipAmount    *float64
	Extra        *float64
	PaymentType  *int64
}

// Dataset is a loaded dataset file reduced to the columns the metrics need.
// Missing values are NaN in the frame.
type Dataset struct {
	Frame        dataframe.DataFrame
	LatestPickup time.Time // zero when no row carries a pickup time
	Rows         int
}
