package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type GigHttpServer struct {
	router          *Router
	muxRouter       *mux.Router
	addr            string
	shutdownTimeout time.Duration
}

func NewGigHttpServer(router *Router, muxRouter *mux.Router, addr string, shutdownTimeout time.Duration) *GigHttpServer {
	return &GigHttpServer{
		router:          router,
		muxRouter:       muxRouter,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *GigHttpServer) Start(ctx context.Context) error {
	s.router.RegisterRoutes()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.muxRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[GigHttpServer] Starting server on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Println("[GigHttpServer] Shutting down the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Println("[GigHttpServer] Server exiting")
	return nil
}
