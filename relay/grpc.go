package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	grpctransport "project-chat/transport/grpc"
	"time"

	"google.golang.org/grpc"
)

const gracefulStopTimeout = 5 * time.Second

// GrpcRelay serves the hub over the Connect bidirectional stream.
type GrpcRelay struct {
	log        *slog.Logger
	hub        *Hub
	bufferSize int
}

func NewGrpcRelay(log *slog.Logger, hub *Hub, bufferSize int) *GrpcRelay {
	return &GrpcRelay{log: log, hub: hub, bufferSize: bufferSize}
}

// Connect blocks until the client half-closes the stream or goes away.
func (g *GrpcRelay) Connect(stream grpc.ServerStream) error {
	conn := grpctransport.NewStreamConn(g.log, stream, g.bufferSize, nil)
	defer conn.Close()
	go conn.ReadEnvelopes()
	return g.hub.Serve(stream.Context(), conn)
}

// GrpcServer is the supervised worker serving GrpcRelay.
type GrpcServer struct {
	log     *slog.Logger
	address string
	relay   *GrpcRelay
}

func NewGrpcServer(log *slog.Logger, address string, relay *GrpcRelay) *GrpcServer {
	return &GrpcServer{log: log, address: address, relay: relay}
}

func (s *GrpcServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve blocks until ctx is done, then stops gracefully. Streams still
// open after gracefulStopTimeout are cut.
func (s *GrpcServer) Serve(ctx context.Context, listener net.Listener) error {
	server := grpc.NewServer()
	grpctransport.RegisterRelayServer(server, s.relay)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting gRPC server", "address", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		stopped := make(chan struct{})
		go func() {
			server.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(gracefulStopTimeout):
			server.Stop()
			<-stopped
		}
		return nil
	case err := <-errCh:
		server.Stop()
		return err
	}
}
