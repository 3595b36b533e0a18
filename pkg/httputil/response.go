package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
	"github.com/kaifgrit/Rifakat/pkg/logger"
	"github.com/kaifgrit/Rifakat/pkg/validator"
)

// ErrorResponse is the body of every non-2xx JSON response. Clients read
// Message; the remaining fields are present only when they carry data.
type ErrorResponse struct {
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Required  []string          `json:"required,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteError maps err to a status code and error body. AppError values keep
// their code, message and details; unknown errors become a generic 500 and
// are logged with the request-scoped logger when one is present.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body := ErrorResponse{
			Message:   appErr.Message,
			Code:      appErr.Code,
			Fields:    appErr.Fields,
			RequestID: requestID,
		}
		switch {
		case errors.Is(appErr, apperrors.ErrValidation):
			body.Errors = appErr.Details
		case len(appErr.Details) > 0:
			body.Required = appErr.Details
		}
		if appErr.Status >= http.StatusInternalServerError {
			logInternal(l, r, err)
		}
		WriteJSON(w, appErr.Status, body)
		return
	}

	status := apperrors.HTTPStatus(err)
	body := ErrorResponse{Code: "INTERNAL_ERROR", Message: "Server Error", RequestID: requestID}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		body.Code, body.Message = "NOT_FOUND", "Resource not found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		body.Code, body.Message = "INVALID_INPUT", err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		body.Code, body.Message = "UNAUTHORIZED", "Not authorized"
	case errors.Is(err, apperrors.ErrUnavailable):
		body.Code, body.Message = "SERVICE_UNAVAILABLE", "Service unavailable"
	}

	if status >= http.StatusInternalServerError {
		logInternal(l, r, err)
	}
	WriteJSON(w, status, body)
}

func logInternal(l *slog.Logger, r *http.Request, err error) {
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
}

// WriteValidationError writes a 400 for a request that failed decoding or
// struct validation. Validator errors carry per-field messages.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Message:   "Validation failed",
			Code:      "VALIDATION_ERROR",
			Errors:    valErr.Messages(),
			Fields:    valErr.Fields(),
			RequestID: requestID,
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Message:   "Invalid request body",
		Code:      "INVALID_INPUT",
		Errors:    []string{err.Error()},
		RequestID: requestID,
	})
}
