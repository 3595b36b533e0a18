package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kaifgrit/Rifakat/internal/search"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
	"github.com/kaifgrit/Rifakat/pkg/httputil"
)

// ProductSearcher answers free-text product searches.
type ProductSearcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

// SearchHandler handles the product search endpoint.
type SearchHandler struct {
	searcher ProductSearcher
	logger   *slog.Logger
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(searcher ProductSearcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

// Search handles GET /api/products/search?q=&category=&brand=&sort=&limit=
// brand is a comma separated list.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := search.Query{
		Text:     params.Get("q"),
		Category: params.Get("category"),
		Sort:     params.Get("sort"),
	}
	for _, b := range strings.Split(params.Get("brand"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			q.Brands = append(q.Brands, b)
		}
	}
	if v := params.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			httputil.WriteError(w, r, apperrors.InvalidInput("limit must be a positive integer"), h.logger)
			return
		}
		q.Limit = limit
	}

	q, err := q.Normalize()
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), h.logger)
		return
	}

	res, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "product search failed", slog.String("error", err.Error()))
		httputil.WriteError(w, r, apperrors.Unavailable("Search", err), h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
