package http

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
)

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]any{"status": "ok"})
}

// ListRoutes returns a handler for GET /api/routes listing every route of router.
func ListRoutes(router chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var routes []string
		err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			routes = append(routes, method+" "+route)
			return nil
		})
		if err != nil {
			writeError(w, r, nil, err)
			return
		}
		sort.Strings(routes)
		writeOK(w, map[string]any{"routes": routes})
	}
}
