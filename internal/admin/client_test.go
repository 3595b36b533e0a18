package admin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifgrit/Rifakat/internal/domain"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
	"github.com/kaifgrit/Rifakat/pkg/httpclient"
)

const goodToken = "tok-123"

type fakeAPI struct {
	t          *testing.T
	deleted    []string
	batchIDs   []string
	authHeader string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/api/auth/login" {
		var body map[string]string
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		if body["username"] != "admin" || body["password"] != "s3cret!" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid username or password","code":"UNAUTHORIZED"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"`+goodToken+`","expiresAt":"2030-01-01T00:00:00Z"}`)
		return
	}

	f.authHeader = r.Header.Get("Authorization")
	if f.authHeader != "Bearer "+goodToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Not authorized, token failed","code":"UNAUTHORIZED"}`)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/products":
		_ = json.NewEncoder(w).Encode([]domain.Product{{ID: "p1", ProductName: "Air Runner"}})
	case r.Method == http.MethodDelete && r.URL.Path == "/api/products/batch":
		var body struct {
			IDs []string `json:"ids"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.batchIDs = body.IDs
		_, _ = io.WriteString(w, `{"message":"Successfully deleted 2 product(s) and associated images.","deletedCount":2}`)
	case r.Method == http.MethodDelete && r.URL.Path == "/api/products/missing":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Product not found","code":"NOT_FOUND"}`)
	case r.Method == http.MethodDelete:
		f.deleted = append(f.deleted, r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"Product and associated images removed"}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newClient(t *testing.T, tokens TokenStore) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{t: t}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.URL, httpclient.New(httpclient.Config{Timeout: 2 * time.Second}), tokens, logger), api
}

func TestLogin(t *testing.T) {
	tokens := &MemoryTokenStore{}
	c, _ := newClient(t, tokens)

	token, err := c.Login(context.Background(), "admin", "s3cret!")

	require.NoError(t, err)
	assert.Equal(t, goodToken, token.Token)
	assert.Equal(t, 2030, token.ExpiresAt.Year())
	stored, _ := tokens.Load()
	assert.Equal(t, goodToken, stored)
}

func TestLogin_Rejected(t *testing.T) {
	tokens := &MemoryTokenStore{}
	c, _ := newClient(t, tokens)

	_, err := c.Login(context.Background(), "admin", "wrong")

	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid username or password", appErr.Message)
	stored, _ := tokens.Load()
	assert.Empty(t, stored)
}

func TestProducts_SendsBearerToken(t *testing.T) {
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save(goodToken))
	c, api := newClient(t, tokens)

	products, err := c.Products(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer "+goodToken, api.authHeader)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}

func TestNotLoggedIn(t *testing.T) {
	c, api := newClient(t, &MemoryTokenStore{})

	_, err := c.Products(context.Background())

	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, api.authHeader, "no request should be sent")
}

func TestSessionExpired_ClearsToken(t *testing.T) {
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save("stale"))
	c, _ := newClient(t, tokens)

	err := c.Delete(context.Background(), "p1")

	assert.ErrorIs(t, err, ErrSessionExpired)
	stored, _ := tokens.Load()
	assert.Empty(t, stored)

	_, err = c.Products(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDelete(t *testing.T) {
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save(goodToken))
	c, api := newClient(t, tokens)

	require.NoError(t, c.Delete(context.Background(), "p1"))
	assert.Equal(t, []string{"/api/products/p1"}, api.deleted)

	err := c.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBatchDelete(t *testing.T) {
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save(goodToken))
	c, api := newClient(t, tokens)

	result, err := c.BatchDelete(context.Background(), []string{"p1", "p2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, api.batchIDs)
	assert.Equal(t, int64(2), result.DeletedCount)
	assert.Equal(t, "Successfully deleted 2 product(s) and associated images.", result.Message)
}

func TestBatchDelete_NoSelection(t *testing.T) {
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save(goodToken))
	c, api := newClient(t, tokens)

	_, err := c.BatchDelete(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Nil(t, api.batchIDs)
}

func TestFileTokenStore(t *testing.T) {
	s := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token"))

	token, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save(goodToken))
	token, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, goodToken, token)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	token, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
