package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ivanoskov/keloladuit/internal/identity"
	"github.com/ivanoskov/keloladuit/internal/logger"
	"github.com/ivanoskov/keloladuit/internal/service"
	"github.com/ivanoskov/keloladuit/internal/validation"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, identity.ErrNoUser),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrRegistrationDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, service.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var fields validation.Errors
	if errors.As(err, &fields) {
		resp.Error = service.ErrValidation.Error()
		resp.Fields = fields
	}
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: invalid request body", service.ErrValidation)
	}
	return nil
}
