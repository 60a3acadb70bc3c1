package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter mounts the storefront, the admin API and the operational
// endpoints, wrapped in CORS.
func NewRouter(checkout *CheckoutHandler, admin *AdminHandler, gatherer prometheus.Gatherer) http.Handler {
	router := mux.NewRouter()
	router.Use(tunnelBypass)

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	admin.RegisterRoutes(router)
	checkout.RegisterRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", adminTokenHeader},
	})

	return c.Handler(router)
}

// tunnelBypass keeps localtunnel from interposing its warning page.
func tunnelBypass(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Bypass-Tunnel-Reminder", "true")
		next.ServeHTTP(w, r)
	})
}
