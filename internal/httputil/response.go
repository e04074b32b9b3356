package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"blogapi/internal/logging"
	"blogapi/internal/model"
)

// MessageResponse is the body of every error and of plain text replies:
// {"message": "Human readable message"}
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationResponse adds the per-field errors of a rejected request.
type ValidationResponse struct {
	Message string             `json:"message"`
	Errors  []model.FieldError `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent
			logging.Component("httputil").WithError(err).Warn("Failed to encode response")
		}
	}
}

// WriteNoContent writes an empty 204.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteMessage writes {"message": message} with the given status.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, MessageResponse{Message: message})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusBadRequest, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusNotFound, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteMessage(w, http.StatusInternalServerError, message)
}

// StatusFor maps an error to its HTTP status by category.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrBadRequest), errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// WriteServiceError is the single place where service errors become HTTP
// responses. Categorized errors carry a client-safe message; anything else
// is logged and answered with a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logging.Component("http").WithError(err).
			WithField("method", r.Method).WithField("path", r.URL.Path).
			Error("Request failed")
		WriteInternalError(w, "Internal server error")
		return
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, status, ValidationResponse{Message: verr.Error(), Errors: verr.Fields})
		return
	}
	WriteMessage(w, status, err.Error())
}
