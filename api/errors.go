package api

import (
	stderrors "errors"
	"net/http"

	"pairchat/errors"
)

// httpStatus maps the domain error kinds onto transport status codes.
// Unavailable is the only retryable kind; clients back off and retry it.
func httpStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, errors.ErrConflict):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrAuthFailure),
		stderrors.Is(err, errors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrUnavailable):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrInvalidPassword),
		stderrors.Is(err, errors.ErrInvalidContent),
		stderrors.Is(err, errors.ErrSamePair):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}
