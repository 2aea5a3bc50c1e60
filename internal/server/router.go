package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"comicai-web/internal/builder"
	"comicai-web/internal/server/handlers"
)

// NewRouter は、ミドルウェアとルーティングを統合した http.Handler を構築します。
func NewRouter(h *builder.AppHandlers) http.Handler {
	r := chi.NewRouter()

	setupCommonMiddleware(r)
	setupRoutes(r, h.Web)

	return r
}

func setupCommonMiddleware(r *chi.Mux) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
}

func setupRoutes(r chi.Router, webHandler *handlers.Handler) {
	r.Get("/", webHandler.Index)
	r.Post("/generate", webHandler.HandleSubmit)
	r.Get("/result", webHandler.Result)

	// 成果物のダウンロード
	r.Route("/outputs", func(r chi.Router) {
		r.Get("/panels/{index}", webHandler.ServePanel)
		r.Get("/comic", webHandler.ServeComposite)
		r.Get("/archive", webHandler.ServeArchive)
	})
}
