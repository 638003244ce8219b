package platform

import (
	"net/http"

	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
)

// HTTPStatus maps an AppError's code onto the HTTP status the API
// surface returns for it.
func HTTPStatus(err error) int {
	switch apperrors.Code(err) {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case apperrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
