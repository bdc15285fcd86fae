package main

import (
	"context"
	"net/http"
	"time"

	"bookfeed/internal/app"
	"bookfeed/internal/author"
	"bookfeed/internal/book"
	"bookfeed/internal/config"
	"bookfeed/internal/httpx"
	"bookfeed/internal/ingest"
)

const maxRequestBytes = 1 << 20

// newRouter registers every route behind the shared middleware chain. The
// returned func releases the rate limiter's client table.
func newRouter(a *app.App, cfg config.Config) (http.Handler, func()) {
	bookHandler := book.NewHTTPHandler(a.Books)
	authorHandler := author.NewHTTPHandler(a.Authors)
	ingestHandler := ingest.NewHTTPHandler(a.Ingest)

	internal := httpx.InternalAuthMiddleware(cfg.InternalSecret, cfg.JWTSecret)
	protect := func(h http.HandlerFunc) http.Handler { return internal(h) }

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := a.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /v1/books", bookHandler.List)
	router.HandleFunc("GET /v1/books/{isbn}", bookHandler.GetByISBN)
	router.Handle("POST /v1/books", protect(bookHandler.Add))
	router.Handle("DELETE /v1/books/{isbn}", protect(bookHandler.Delete))
	router.HandleFunc("GET /v1/authors/{name}", authorHandler.Get)

	router.Handle("POST /internal/jobs/unreleased-books", protect(ingestHandler.UnreleasedBooks))
	router.Handle("POST /internal/jobs/custom-books", protect(ingestHandler.CustomBooks))
	router.Handle("DELETE /internal/jobs/old-books", protect(ingestHandler.OldBooks))
	router.Handle("POST /internal/jobs/popular-authors", protect(ingestHandler.PopularAuthors))
	router.Handle("GET /internal/runs", protect(ingestHandler.Runs))

	limiter := httpx.NewRateLimitMiddleware(float64(cfg.RateLimitRPS), cfg.RateLimitRPS*2, "/healthz", "/readyz")
	limiter.TrustProxies(cfg.TrustedProxies...)
	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(false),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
		limiter.Middleware,
	)
	return handler, limiter.Close
}
