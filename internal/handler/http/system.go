package http

import (
	"net/http"
	"time"

	"github.com/kaifgrit/Rifakat/pkg/httputil"
)

// BannerText is served at the root path.
const BannerText = "Rifakat Shoe Garden Backend is running..."

type apiTestResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Root handles GET /
func Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(BannerText))
}

// APITest handles GET /api/test
func APITest(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, apiTestResponse{
		Message:   "API is working!",
		Timestamp: time.Now().UTC(),
	})
}
