package bookstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

func TestClient_ReleaseIdleCarts(t *testing.T) {
	var gotPath, gotQuery, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"released":3}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", nil)
	require.NoError(t, err)

	released, err := client.ReleaseIdleCarts(context.Background(), 45*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, released)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/admin/carts/release-idle", gotPath)
	assert.Equal(t, "idleMinutes=45", gotQuery)

	_, err = client.ReleaseIdleCarts(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestClient_ReturnsProblemDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", apierrors.ContentTypeProblemJSON)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"/problems/validation-error","title":"Validation Error","status":400,"detail":"idle duration must be positive"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.ReleaseIdleCarts(context.Background(), time.Minute)
	var problem apierrors.ProblemDetail
	require.True(t, errors.As(err, &problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Contains(t, problem.Detail, "positive")
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ", nil)
	require.Error(t, err)
}
