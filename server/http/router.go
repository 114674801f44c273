package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"autofill-service/internal/autofill/handler"
	"autofill-service/internal/autofill/service"
	"autofill-service/internal/config"
	"autofill-service/internal/middleware"
)

func NewRouter(cfg config.Config, ctrl *service.Controller, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxBodyBytes()))

	matcher := ctrl.Filler().Matcher()

	r.Get("/health", handler.Health)
	r.Get("/mapping", handler.Mapping(matcher.Mapping()))
	r.Post("/match", handler.Match(matcher))
	r.Post("/fill", handler.Fill(ctrl, logger))

	return r
}
