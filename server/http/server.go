package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/w-h-a/support/server"
	"go.uber.org/zap"
)

type httpServer struct {
	options  server.Options
	server   *http.Server
	listener net.Listener
	mtx      sync.RWMutex
}

func (s *httpServer) Start() error {
	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	s.listener = ln
	s.mtx.Unlock()

	zap.L().Info("http server listening", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("http server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address reports the bound address once started, otherwise the
// configured one.
func (s *httpServer) Address() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.options.Address
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	handler, ok := HandlerFrom(options.Context)
	if !ok {
		panic("http server requires a handler")
	}

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	return &httpServer{
		options: options,
		server: &http.Server{
			Addr:              options.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}
