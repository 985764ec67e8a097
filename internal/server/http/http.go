package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
)

type Server struct {
	mu           sync.Mutex
	public       *http.Server
	publicRouter *chi.Mux
	routes       sync.Once

	handler *Handler
}

func New(handler *Handler) *Server {
	return &Server{
		publicRouter: chi.NewRouter(),

		handler: handler,
	}
}

// Router returns the public router with every route registered.
func (s *Server) Router(mws ...func(http.Handler) http.Handler) http.Handler {
	s.routes.Do(func() {
		s.registerPublicRoutes(mws...)
	})
	return s.publicRouter
}

func (s *Server) ServePublic(addr string, mws ...func(http.Handler) http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(mws...),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.public = srv
	s.mu.Unlock()

	return srv.ListenAndServe()
}

func (s *Server) ShutdownPublic(ctx context.Context) error {
	s.mu.Lock()
	srv := s.public
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return srv.Close()
	}
	return nil
}

func (s *Server) registerPublicRoutes(middlewares ...func(http.Handler) http.Handler) {
	s.publicRouter.Use(middlewares...)
	s.publicRouter.Get("/_/ready", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	s.publicRouter.Route("/v1", func(r chi.Router) {
		r.Route("/window", func(r chi.Router) {
			r.Post("/pointermove", s.handler.PointerMove)
			r.Post("/click", s.handler.Click)
			r.Post("/resize", s.handler.Resize)
		})
		r.Post("/message", s.handler.Message)
		r.Route("/workspace", func(r chi.Router) {
			r.Post("/mutation", s.handler.Mutation)
			r.Put("/state", s.handler.WorkspaceState)
		})
		r.Post("/report", s.handler.Report)
		r.Get("/streams", s.handler.Status)
	})
}
