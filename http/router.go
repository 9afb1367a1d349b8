package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the quote routes. Quote routes share the rate limiter.
func NewRouter(h *QuoteHandler, limiter *RateLimiter, logger *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(logger))

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/catalog/{category}/questions", h.Questions).Methods(http.MethodGet)

	limited := RateLimitMiddleware(limiter, logger)
	r.Handle("/quote/calculate", limited(http.HandlerFunc(h.Calculate))).Methods(http.MethodPost)
	r.Handle("/quote/submit", limited(http.HandlerFunc(h.Submit))).Methods(http.MethodPost)

	return r
}
