package server

import (
	"fmt"
	"log"
	"net/http"

	"TupleDB/internal/platform/config"
	"TupleDB/internal/platform/server/handler/health"
	"TupleDB/internal/platform/server/handler/tuple"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	httpAddr string
	engine   *chi.Mux
}

func NewServer(cfg config.Config, tuples *tuple.TupleHandler, healthHandler *health.HealthHandler) Server {
	srv := Server{
		engine:   chi.NewRouter(),
		httpAddr: fmt.Sprintf(":%d", cfg.ServerPort),
	}
	srv.engine.Use(middleware.Logger)
	srv.registerRoutes(tuples, healthHandler)
	return srv
}

func (s *Server) Run() error {
	log.Println("Server Running on:", s.httpAddr)
	return http.ListenAndServe(s.httpAddr, s.engine)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes(tuples *tuple.TupleHandler, healthHandler *health.HealthHandler) {
	s.engine.Get("/health", healthHandler.Check)
	s.engine.Get("/db", tuples.ScanTuples)
	s.engine.Post("/db/sync", tuples.SyncTuples)
	s.engine.Get("/db/{id}", tuples.GetTuple)
	s.engine.Post("/db/{id}", tuples.SaveTuple)
	s.engine.Delete("/db/{id}", tuples.DeleteTuple)
}
