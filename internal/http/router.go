package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	syncHandler "github.com/driftwoodhq/ledgersync/internal/http/sync"
	"github.com/driftwoodhq/ledgersync/internal/http/transaction"
	"github.com/driftwoodhq/ledgersync/internal/http/webhook"
)

func New(
	syncV1 *syncHandler.Handler,
	webhookV1 *webhook.Handler,
	transactionsV1 *transaction.Handler,
	corsOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/sync", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			syncV1.Routes(r)
		})

		// Providers send their own content types and retry on non-2xx, so no
		// content-type gate here.
		r.Route("/webhooks", webhookV1.Routes)

		r.Route("/sessions", syncV1.SessionRoutes)

		r.Route("/transactions", func(r chi.Router) {
			transactionsV1.Routes(r)
		})
	})

	return router
}
