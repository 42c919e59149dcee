// Package http provides HTTP routing and middleware configuration
// for the card generator service.
package http

import (
	"net/http"
	"strings"

	"github.com/atinyakov/bizcard/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Fields    *FieldHandler
	Templates *TemplateHandler
	Relay     *RelayHandler
}

// RouterOptions locates the front-end and the uploaded assets.
type RouterOptions struct {
	// PublicDir is served at "/". Empty disables static hosting.
	PublicDir string
	// UploadsDir is served at UploadsURLPrefix without directory listings.
	UploadsDir       string
	UploadsURLPrefix string
}

// NewRouter constructs and returns an HTTP handler that serves the card
// generator API and its static front-end.
//
// Routes:
//
//	GET  /health                             → Health
//	GET  /api/routes                         → ListRoutes
//	GET  /api/fields                         → Fields.List
//	GET  /api/templates                      → Templates.List
//	POST /api/upload-preview                 → Relay.UploadPreview
//	POST /api/save                           → Relay.Save (multipart)
//	POST /api/admin/login                    → Auth.Login
//	POST /api/admin/logout                   → Auth.Logout              (admin)
//	POST /api/admin/fields                   → Fields.Replace           (admin)
//	POST /api/admin/templates                → Templates.Create         (admin)
//	POST /api/admin/templates/{id}           → Templates.Patch          (admin)
//	POST /api/admin/templates/{id}/upload    → Templates.UploadBackground (admin)
//	GET  /api/admin/test-email               → Relay.TestEmail          (admin)
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP
//  2. WithRequestLogging(logger)
//  3. Recoverer
//  4. AllowContentType("application/json") on JSON endpoints
//  5. AdminAuth on the admin group
func NewRouter(h Handlers, opts RouterOptions, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	jsonOnly := chiMiddleware.AllowContentType("application/json")

	r.Get("/health", Health)

	r.Route("/api", func(api chi.Router) {
		// Public endpoints
		api.Get("/routes", ListRoutes(r))
		api.Get("/fields", h.Fields.List)
		api.Get("/templates", h.Templates.List)
		api.With(jsonOnly).Post("/upload-preview", h.Relay.UploadPreview)
		api.Post("/save", h.Relay.Save)

		api.Route("/admin", func(admin chi.Router) {
			admin.With(jsonOnly).Post("/login", h.Auth.Login)

			// Protected group: requires a live admin bearer token
			admin.Group(func(p chi.Router) {
				p.Use(middleware.AdminAuth(h.Auth.AuthService, writeAuthError))
				p.Use(jsonOnly)

				p.Post("/logout", h.Auth.Logout)
				p.Post("/fields", h.Fields.Replace)
				p.Post("/templates", h.Templates.Create)
				p.Post("/templates/{id}", h.Templates.Patch)
				p.Post("/templates/{id}/upload", h.Templates.UploadBackground)
				p.Get("/test-email", h.Relay.TestEmail)
			})
		})
	})

	if opts.UploadsDir != "" {
		prefix := "/" + strings.Trim(opts.UploadsURLPrefix, "/")
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(opts.UploadsDir)))
		r.Handle(prefix+"/*", noDirListing(files))
	}
	if opts.PublicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.PublicDir)))
	}

	return r
}

// noDirListing hides directory indexes so uploaded cards cannot be enumerated.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
