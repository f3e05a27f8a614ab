package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"shipmatch-service/internal/config"
	matchHnd "shipmatch-service/internal/match/handler"
	"shipmatch-service/internal/match/service"
	"shipmatch-service/internal/middleware"
	"shipmatch-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, svc *service.Service) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	r.Get("/match/hbl", matchHnd.MatchHBL(svc, logger))
	r.Post("/shipments/upload", matchHnd.UploadShipments(svc, logger))
	r.Post("/bookings/upload", matchHnd.UploadBookings(svc, logger))

	return r
}
