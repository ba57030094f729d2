package handler

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return errors.New("failed to encode json")
	}

	js = append(js, '\n')

	maps.Copy(w.Header(), headers)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

// readInt returns the integer query value for key, or def when it is absent.
func readInt(qs url.Values, key string, def int) (int, error) {
	s := qs.Get(key)
	if s == "" {
		return def, nil
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(key + " must be an integer value")
	}
	return i, nil
}

func GetCode(err error) int {
	switch {
	case IsOneOf(err, types.ErrInvalidMonth):
		return http.StatusBadRequest
	case IsOneOf(err, types.ErrInvalidToken):
		return http.StatusUnauthorized
	case IsOneOf(err, types.ErrForbidden):
		return http.StatusForbidden
	case IsOneOf(err, types.ErrMonthNotPublished, types.ErrNoData, types.ErrNotFound):
		return http.StatusNotFound
	case IsOneOf(err, types.ErrNoTrips):
		return http.StatusUnprocessableEntity
	case IsOneOf(err, types.ErrFetchFailed, types.ErrMalformedDataset):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func IsOneOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
