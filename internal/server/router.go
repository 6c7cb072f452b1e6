package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nodewatch-systems/nodewatch/internal/handlers"
	"github.com/nodewatch-systems/nodewatch/internal/middleware"
	"github.com/nodewatch-systems/nodewatch/internal/models"
)

// NewRouter constructs the API router with CORS and request-id
// middleware applied to every route.
func NewRouter(h *handlers.Handler, cors middleware.CORSConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/ingest", h.HandleIngest)
	mux.HandleFunc("/api/latest", h.HandleLatest)
	mux.HandleFunc("/api/history", h.HandleHistory)

	mux.HandleFunc("/api/actuator/relay", h.Actuator(models.FlagRelay))
	mux.HandleFunc("/api/actuator/led", h.Actuator(models.FlagLED))

	return middleware.RequestID(middleware.CORS(cors)(mux))
}
