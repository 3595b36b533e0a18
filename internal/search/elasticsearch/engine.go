// Package elasticsearch is the Elasticsearch-backed search.Engine.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kaifgrit/Rifakat/internal/search"
)

// Config holds cluster connection settings.
type Config struct {
	URLs     []string `env:"ELASTICSEARCH_URLS" envSeparator:","`
	Username string   `env:"ELASTICSEARCH_USERNAME"`
	Password string   `env:"ELASTICSEARCH_PASSWORD"`
	Index    string   `env:"ELASTICSEARCH_INDEX" envDefault:"rifakat_products"`
}

// Engine stores product documents in one index.
type Engine struct {
	client *elasticsearch.Client
	index  string
	logger *slog.Logger
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source search.Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Open creates an engine without contacting the cluster.
func Open(cfg Config, logger *slog.Logger) (*Engine, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.URLs,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return NewWithClient(client, cfg.Index, logger), nil
}

// New opens an engine and creates the index when it is missing.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Engine, error) {
	e, err := Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := e.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// NewWithClient wraps an existing client without touching the cluster.
func NewWithClient(client *elasticsearch.Client, index string, logger *slog.Logger) *Engine {
	if index == "" {
		index = DefaultIndexName
	}
	return &Engine{client: client, index: index, logger: logger}
}

// Ping checks that the cluster answers.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the index with its mapping unless it exists.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", e.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}

	e.logger.InfoContext(ctx, "elasticsearch index created", slog.String("index", e.index))
	return nil
}

func (e *Engine) Index(ctx context.Context, doc *search.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := e.client.Index(e.index, bytes.NewReader(body),
		e.client.Index.WithDocumentID(doc.ID),
		e.client.Index.WithRefresh("wait_for"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("elasticsearch index", res)
	}
	return nil
}

func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.index, id, e.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete", res)
	}
	return nil
}

func (e *Engine) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
		e.client.Search.WithTrackTotalHits(true),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("elasticsearch search", res)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &search.Result{Products: make([]search.Document, 0, len(sr.Hits.Hits)), Total: sr.Hits.Total.Value}
	for _, h := range sr.Hits.Hits {
		out.Products = append(out.Products, h.Source)
	}
	return out, nil
}

// buildQuery translates q into the query DSL.
func buildQuery(q search.Query) map[string]any {
	var must any = map[string]any{"match_all": map[string]any{}}
	if q.Text != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":         q.Text,
				"fields":        []string{"productName^3", "productName.autocomplete^2", "brand.text", "category.text", "colorNames"},
				"type":          "best_fields",
				"fuzziness":     "AUTO",
				"prefix_length": 1,
			},
		}
	}

	boolQuery := map[string]any{"must": []any{must}}
	var filters []any
	if q.Category != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"category": q.Category}})
	}
	if len(q.Brands) > 0 {
		filters = append(filters, map[string]any{"terms": map[string]any{"brand": q.Brands}})
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	var sort []any
	switch q.Sort {
	case search.SortPriceAsc:
		sort = []any{map[string]any{"price": "asc"}, map[string]any{"id": "asc"}}
	case search.SortPriceDesc:
		sort = []any{map[string]any{"price": "desc"}, map[string]any{"id": "asc"}}
	default:
		sort = []any{map[string]any{"_score": "desc"}, map[string]any{"id": "asc"}}
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"size":  q.Limit,
		"sort":  sort,
	}
}

func responseError(op string, res *esapi.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, er.Error.Type, er.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, res.Status())
}
