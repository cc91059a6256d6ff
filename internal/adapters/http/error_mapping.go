package httpadapter

import (
	"net/http"

	"github.com/qualitymap/qualitymap/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrExtraction):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrNoRequirements):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrNotFound):
		return "not_found"
	case domain.IsKind(err, domain.ErrNoRequirements):
		return "no_requirements_found"
	case domain.IsKind(err, domain.ErrExtraction):
		return "extraction_failed"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporarily_unavailable"
	case domain.IsKind(err, domain.ErrClassification):
		return "classification_failed"
	default:
		return "internal_error"
	}
}
