package domain

import "errors"

// Fatal API conditions. None of them is retried and each aborts the run.
var (
	ErrInvalidAPIKey = errors.New("invalid or unauthorized api key")
	ErrQuotaExceeded = errors.New("api quota exceeded, check your quota in the cloud console")
	ErrBadRequest    = errors.New("request rejected by the api")
)

func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrBadRequest)
}
