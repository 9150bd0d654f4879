package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/tgflow/internal/logging"
	"github.com/aretw0/tgflow/pkg/adapters/telegram"
	"github.com/aretw0/tgflow/pkg/chat"
)

// maxUpdateBytes caps a webhook body. Bot API updates are small; anything
// bigger is not one.
const maxUpdateBytes = 1 << 20

// Config wires the HTTP surface: the update handler, the shared secret
// embedded in the webhook path, and the metrics registry to expose.
type Config struct {
	// Handler receives each decoded update.
	Handler func(ctx context.Context, u chat.Update) error

	// WebhookSecret guards POST /webhook/{secret}. Empty disables the
	// webhook route.
	WebhookSecret string

	// Gatherer backs GET /metrics. Nil falls back to the default
	// Prometheus gatherer.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// NewHandler builds the router: health, metrics and the Telegram webhook.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if cfg.WebhookSecret != "" && cfg.Handler != nil {
		r.Post("/webhook/{secret}", func(w http.ResponseWriter, req *http.Request) {
			if chi.URLParam(req, "secret") != cfg.WebhookSecret {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			body, err := io.ReadAll(io.LimitReader(req.Body, maxUpdateBytes))
			if err != nil {
				http.Error(w, "read error", http.StatusBadRequest)
				return
			}
			u, err := telegram.MapRawUpdate(body)
			if err != nil {
				logger.Warn("undecodable webhook update", "err", err)
				// 200 so Telegram does not redeliver a poison update.
				w.WriteHeader(http.StatusOK)
				return
			}
			if u.Message == nil && u.Callback == nil {
				w.WriteHeader(http.StatusOK)
				return
			}
			if err := cfg.Handler(req.Context(), u); err != nil {
				logger.Error("webhook update handling failed", "err", err)
			}
			w.WriteHeader(http.StatusOK)
		})
	}

	return r
}
