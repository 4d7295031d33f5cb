package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otalvarodev/liga-live/handlers"
	"github.com/otalvarodev/liga-live/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	matchHandler *handlers.MatchHandler,
	scheduleHandler *handlers.ScheduleHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws", webSocketHandler.ServeWs)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", matchHandler.Create)
			r.Put("/{matchID}", matchHandler.Update)
			r.Delete("/{matchID}", matchHandler.Delete)

			r.Post("/{matchID}/start", matchHandler.Start)
			r.Post("/{matchID}/pause", matchHandler.Pause)
			r.Post("/{matchID}/resume", matchHandler.Resume)
			r.Post("/{matchID}/finish", matchHandler.Finish)
			r.Post("/{matchID}/cancel", matchHandler.Cancel)

			r.Post("/{matchID}/events", matchHandler.AddEvent)
			r.Put("/{matchID}/score", matchHandler.UpdateScore)
		})
	})

	router.Route("/categories/{categoryID}", func(r chi.Router) {
		r.Get("/brackets", scheduleHandler.ListBrackets)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/group-matches", scheduleHandler.GenerateGroupMatches)
			r.Post("/bracket-matches", scheduleHandler.GenerateBracketMatches)
		})
	})
}
