package server

import (
	"cfbot/internal/chat"
	"cfbot/internal/logger"
	"cfbot/internal/metrics"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() http.Handler {
	r := chat.NewRouter(nil)
	r.On(`^ping$`, "ping", "Ping", func(ctx context.Context, _ map[string]string) (chat.Reply, error) {
		return chat.Reply{Text: "pong", Code: true}, nil
	})
	return NewHandler(r, metrics.NewRecorder(nil).Handler(), logger.NewNop())
}

func TestPostMessage(t *testing.T) {
	h := newTestHandler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{"body":"ping"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	var reply chat.Reply
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reply))
	assert.Equal(t, chat.Reply{Text: "pong", Code: true}, reply)
}

func TestPostMessageNoMatch(t *testing.T) {
	h := newTestHandler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{"body":"hello"}`)))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPostMessageBadRequest(t *testing.T) {
	h := newTestHandler()
	for _, body := range []string{`not json`, `{"body":"  "}`, `{}`} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	h := newTestHandler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cfbot_index_entries")
}

func TestMetricsDisabled(t *testing.T) {
	h := NewHandler(chat.NewRouter(nil), nil, logger.NewNop())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
