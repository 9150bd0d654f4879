package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tgflow/pkg/chat"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := NewHandler(Config{})
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "tgflow_test_total"})
	reg.MustRegister(c)
	c.Inc()

	h := NewHandler(Config{Gatherer: reg})
	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tgflow_test_total 1")
}

func TestWebhook_Secret(t *testing.T) {
	var got []chat.Update
	h := NewHandler(Config{
		WebhookSecret: "s3cret",
		Handler: func(_ context.Context, u chat.Update) error {
			got = append(got, u)
			return nil
		},
	})
	update := `{"update_id":1,"message":{"message_id":5,"from":{"id":7},"chat":{"id":42},"text":"hi"}}`

	rec := do(t, h, http.MethodPost, "/webhook/wrong", update)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, got)

	rec = do(t, h, http.MethodPost, "/webhook/s3cret", update)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Message.Text)
}

func TestWebhook_PoisonUpdateStillAccepted(t *testing.T) {
	called := false
	h := NewHandler(Config{
		WebhookSecret: "s3cret",
		Handler: func(_ context.Context, _ chat.Update) error {
			called = true
			return nil
		},
	})

	rec := do(t, h, http.MethodPost, "/webhook/s3cret", "{broken")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)

	// Update kinds the engine ignores are acknowledged without dispatch.
	rec = do(t, h, http.MethodPost, "/webhook/s3cret", `{"update_id":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}

func TestWebhook_DisabledWithoutSecret(t *testing.T) {
	h := NewHandler(Config{
		Handler: func(_ context.Context, _ chat.Update) error { return nil },
	})
	rec := do(t, h, http.MethodPost, "/webhook/anything", `{"update_id":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhook_HandlerErrorStillOK(t *testing.T) {
	h := NewHandler(Config{
		WebhookSecret: "s3cret",
		Handler: func(_ context.Context, _ chat.Update) error {
			return assert.AnError
		},
	})
	update := `{"update_id":1,"message":{"message_id":5,"chat":{"id":42},"text":"hi"}}`
	rec := do(t, h, http.MethodPost, "/webhook/s3cret", update)
	assert.Equal(t, http.StatusOK, rec.Code)
}
