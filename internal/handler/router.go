package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tag-encryption-service/config"
)

// NewRouter はルーターを生成する。
func NewRouter(tags *TagHandler, protection *ProtectionHandler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	// ルート定義
	r.Route("/v1/tags", func(r chi.Router) {
		r.Post("/encode", tags.EncodeTag)
		r.Post("/decode", tags.DecodeTag)
	})
	r.Route("/v1/protection", func(r chi.Router) {
		r.Get("/status", protection.GetStatus)
		r.Post("/migrate", protection.PrepareMigration)
	})

	if cfg.OtelEnabled {
		return otelhttp.NewHandler(r, "tag-encryption-service")
	}
	return r
}
