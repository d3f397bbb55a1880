package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/daroga0002/tech-controllers/internal/emodul"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeUpstream     = "upstream_error"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeClientError maps an eMODUL client error to an HTTP response.
//
// Expired sessions map to 401, missing zones/tiles to 404, cloud API
// failures to 502, everything else to 500.
func writeClientError(w http.ResponseWriter, err error) {
	switch {
	case emodul.IsAuthError(err):
		writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, emodul.ErrZoneNotFound), errors.Is(err, emodul.ErrTileNotFound):
		writeNotFound(w, err.Error())
	default:
		var apiErr *emodul.APIError
		if errors.As(err, &apiErr) {
			writeError(w, http.StatusBadGateway, ErrCodeUpstream, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
