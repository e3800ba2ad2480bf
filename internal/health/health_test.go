package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error { return s.err }

func TestHealthCheck_Healthy(t *testing.T) {
	s := NewServer(&stubPinger{}, 8080)

	rec := httptest.NewRecorder()
	s.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Empty(t, resp.Error)
}

func TestHealthCheck_StoreUnreachable(t *testing.T) {
	s := NewServer(&stubPinger{err: errors.New("connection refused")}, 8080)

	rec := httptest.NewRecorder()
	s.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "unreachable", resp.Store)
	assert.Contains(t, resp.Error, "connection refused")
}

func TestHealthCheck_MethodNotAllowed(t *testing.T) {
	s := NewServer(&stubPinger{}, 8080)

	rec := httptest.NewRecorder()
	s.healthCheckHandler(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
