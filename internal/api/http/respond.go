package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/logger"
)

// envelope is the only response shape this API produces. Callers probe the
// content type and treat anything that is not JSON as a fatal client error,
// so every path, including panics, funnels through writeJSON.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, env envelope) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(env)
	if err != nil {
		// Marshal of an envelope only fails on unserializable Data; fall
		// back to a fixed JSON body rather than a plain-text error page.
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"internal error"}`))
		return
	}
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, envelope{Status: "success", Data: data})
}

// writeError maps domain error kinds to transport responses. Expected domain
// outcomes come back as structured, actionable bodies; anything unrecognized
// is logged in full and surfaced only as a generic message.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError
	var illegalErr *domain.IllegalTransitionError

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, envelope{Status: "error", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{Status: "error", Message: err.Error()})
	case errors.Is(err, domain.ErrTenantSuspended):
		writeJSON(w, http.StatusForbidden, envelope{Status: "error", Message: err.Error()})
	case errors.Is(err, domain.ErrTenantNotFound), errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Status: "error", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidWindow):
		writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: err.Error()})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: validationErr.Error(),
			Data: map[string]string{"field": validationErr.Field}})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, envelope{Status: "error", Message: conflictErr.Error(),
			Data: map[string]interface{}{"conflicts": conflictErr.Conflicts}})
	case errors.As(err, &illegalErr):
		writeJSON(w, http.StatusConflict, envelope{Status: "error", Message: illegalErr.Error(),
			Data: map[string]string{"from": string(illegalErr.From), "event": string(illegalErr.Event)}})
	case errors.Is(err, domain.ErrInvoiceTerminal):
		writeJSON(w, http.StatusConflict, envelope{Status: "error", Message: err.Error()})
	default:
		logger.Error("Unexpected error handling request", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Status: "error", Message: "internal error"})
	}
}
