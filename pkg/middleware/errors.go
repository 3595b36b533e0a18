package middleware

import (
	"net/http"

	"github.com/kaifgrit/Rifakat/pkg/httputil"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.ErrorResponse{Code: code, Message: message})
}
