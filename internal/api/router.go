package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/register", apiHandler.RegisterHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Post("/guest", apiHandler.GuestHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Session-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Post("/logout", apiHandler.LogoutHandler)

			r.Post("/chat", apiHandler.ChatHandler)
			r.Get("/history", apiHandler.HistoryHandler)

			r.Post("/files", apiHandler.UploadFileHandler)
			r.Get("/files", apiHandler.ListFilesHandler)

			r.Post("/corpus", apiHandler.AddCorpusHandler)
			r.Get("/corpus", apiHandler.ListCorpusHandler)
		})
	})

	return r
}
