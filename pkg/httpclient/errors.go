package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
	"github.com/kaifgrit/Rifakat/pkg/httputil"
)

// ParseResponseError turns a non-2xx response into an AppError carrying the
// server's message, status and detail list. Bodies that are not the API's
// JSON error shape keep the raw text as the message. The body is consumed
// and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	var body httputil.ErrorResponse
	if json.Unmarshal(raw, &body) != nil || body.Message == "" {
		body = httputil.ErrorResponse{Message: http.StatusText(resp.StatusCode)}
		if len(raw) > 0 {
			body.Message = string(raw)
		}
	}

	appErr := &apperrors.AppError{
		Code:    body.Code,
		Message: body.Message,
		Fields:  body.Fields,
		Status:  resp.StatusCode,
		Err:     sentinelFor(resp.StatusCode),
	}
	appErr.Details = append(appErr.Details, body.Required...)
	appErr.Details = append(appErr.Details, body.Errors...)
	return appErr
}

func sentinelFor(status int) error {
	switch {
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status == http.StatusConflict:
		return apperrors.ErrAlreadyExists
	case status == http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case status == http.StatusServiceUnavailable:
		return apperrors.ErrUnavailable
	case status >= 500:
		return apperrors.ErrInternal
	default:
		return nil
	}
}

// IsClientError reports whether status is 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
