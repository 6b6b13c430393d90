package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(panelHandler *PanelHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/panel", panelHandler.GetPanel)
	r.Get("/status", panelHandler.GetStatus)
	r.Get("/votacoes", panelHandler.ListVotacoes)
	r.Post("/reconnect", panelHandler.Reconnect)
	r.Post("/votes", panelHandler.SubmitVote)

	return r
}
