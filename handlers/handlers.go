package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/upb/command-gateway/services"
	"github.com/upb/command-gateway/utils"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// decodeJSON decodes a request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// parsePagination extracts limit/offset query parameters with sane bounds
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// writeDomainError maps a service error to the appropriate HTTP response.
// Every failure yields an error-shaped response, never a silent drop.
func writeDomainError(w http.ResponseWriter, err error) {
	switch services.GetErrorType(err) {
	case services.ErrorTypeValidation:
		_ = utils.WriteBadRequest(w, errMessage(err), services.GetErrorDetails(err))
	case services.ErrorTypeUnauthorized:
		_ = utils.WriteUnauthorized(w, errMessage(err))
	case services.ErrorTypeForbidden:
		_ = utils.WriteForbidden(w, errMessage(err))
	case services.ErrorTypeInsufficientCredits:
		_ = utils.WritePaymentRequired(w, errMessage(err), services.GetErrorDetails(err))
	case services.ErrorTypeNotFound:
		_ = utils.WriteNotFound(w, errMessage(err))
	case services.ErrorTypeConflict:
		_ = utils.WriteConflict(w, errMessage(err), services.GetErrorDetails(err))
	case services.ErrorTypeStorageUnavailable, services.ErrorTypeTransactionFailed:
		// Retriable: the unit was rolled back or never started.
		_ = utils.WriteServiceUnavailable(w, errMessage(err))
	default:
		_ = utils.WriteInternalServerError(w, "")
	}
}

// errMessage returns the domain error message without internal causes
func errMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}
