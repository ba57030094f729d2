package types

import "errors"

var (
	ErrFetchFailed       = errors.New("failed to fetch dataset")
	ErrMonthNotPublished = errors.New("dataset for month is not published yet")
	ErrMalformedDataset  = errors.New("malformed dataset")
	ErrNoTrips           = errors.New("no metrics computable: cleaned dataset is empty")
	ErrNoData            = errors.New("no data available")
	ErrInvalidMonth      = errors.New("invalid month, expected YYYY-MM")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("requested item not found")
)
