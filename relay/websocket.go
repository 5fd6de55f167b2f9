package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	wstransport "project-chat/transport/websocket"
	"time"

	"github.com/gorilla/websocket"
)

const WebSocketPath = "/ws"

// WebSocketHandler upgrades HTTP requests and hands the socket to the hub.
type WebSocketHandler struct {
	log        *slog.Logger
	hub        *Hub
	bufferSize int
	upgrader   websocket.Upgrader
}

func NewWebSocketHandler(log *slog.Logger, hub *Hub, bufferSize int) *WebSocketHandler {
	return &WebSocketHandler{
		log:        log,
		hub:        hub,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers connect from any origin, there is no auth to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn := wstransport.NewConn(h.log, ws, h.bufferSize)
	defer conn.Close()
	go conn.ReadEnvelopes()

	if err = h.hub.Serve(r.Context(), conn); err != nil {
		h.log.Debug("Websocket participant ended", "remote", r.RemoteAddr, "error", err)
	}
}

// WebSocketServer is the supervised worker serving WebSocketHandler.
type WebSocketServer struct {
	log     *slog.Logger
	address string
	mux     *http.ServeMux
}

func NewWebSocketServer(log *slog.Logger, address string, handler *WebSocketHandler) *WebSocketServer {
	mux := http.NewServeMux()
	mux.Handle(WebSocketPath, handler)
	return &WebSocketServer{log: log, address: address, mux: mux}
}

// Handle mounts an extra HTTP route next to the websocket endpoint.
func (s *WebSocketServer) Handle(pattern string, handler http.Handler) *WebSocketServer {
	s.mux.Handle(pattern, handler)
	return s
}

func (s *WebSocketServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve blocks until ctx is done. Request contexts derive from ctx, so
// hijacked websocket connections end with it too.
func (s *WebSocketServer) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting websocket server", "address", listener.Addr().String(), "path", WebSocketPath)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("websocket server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
