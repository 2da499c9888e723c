package monitoring

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 2 * time.Second

// Server exposes /metrics and /health on one listener
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// NewServer binds addr immediately so callers see port conflicts before scheduling anything
func NewServer(addr string, health *HealthChecker) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", NewMetricsHandler())
	if health != nil {
		mux.Handle("/health", health)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: listener,
	}, nil
}

// Addr returns the bound address
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks until ctx is done, then shuts the server down
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
