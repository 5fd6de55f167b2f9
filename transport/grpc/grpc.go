// Package grpc carries envelopes over a gRPC bidirectional stream.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"project-chat/contract"
	"project-chat/domain/event"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

type Transport struct {
	log         *slog.Logger
	bufferSize  int
	dialOptions []grpc.DialOption
}

func NewTransport(log *slog.Logger, bufferSize int, opts ...grpc.DialOption) *Transport {
	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)
	return &Transport{log: log, bufferSize: bufferSize, dialOptions: dialOptions}
}

func (t *Transport) Dial(ctx context.Context, endpoint string) (contract.Conn, error) {
	cc, err := grpc.NewClient(endpoint, t.dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("could not connect to relay at %s: %w", endpoint, err)
	}

	// The stream outlives the dial context; only a cancellation during the
	// dial itself aborts it.
	streamCtx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)
	stream, err := cc.NewStream(streamCtx, &ServiceDesc.Streams[0], ConnectMethod)
	if !stop() || err != nil {
		cancel()
		_ = cc.Close()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	conn := NewStreamConn(t.log, stream, t.bufferSize, func() error {
		cancel()
		return cc.Close()
	})
	go conn.ReadEnvelopes()
	return conn, nil
}

type msgStream interface {
	SendMsg(m any) error
	RecvMsg(m any) error
}

// StreamConn adapts a client or server stream to contract.Conn.
type StreamConn struct {
	log     *slog.Logger
	stream  msgStream
	sendMu  sync.Mutex
	inbound chan event.Envelope
	done    chan struct{}
	once    sync.Once
	release func() error
}

func NewStreamConn(log *slog.Logger, stream msgStream, bufferSize int, release func() error) *StreamConn {
	return &StreamConn{
		log:     log,
		stream:  stream,
		inbound: make(chan event.Envelope, bufferSize),
		done:    make(chan struct{}),
		release: release,
	}
}

func (c *StreamConn) Emit(_ context.Context, name event.Name, payload any) error {
	env, err := event.NewEnvelope(name, payload)
	if err != nil {
		return err
	}
	msg, err := ToStruct(env)
	if err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	select {
	case <-c.done:
		return fmt.Errorf("stream closed")
	default:
	}
	return c.stream.SendMsg(msg)
}

func (c *StreamConn) Inbound() <-chan event.Envelope {
	return c.inbound
}

// ReadEnvelopes receives until the stream ends or the connection is closed.
func (c *StreamConn) ReadEnvelopes() {
	defer close(c.inbound)
	for {
		msg := new(structpb.Struct)
		if err := c.stream.RecvMsg(msg); err != nil {
			c.log.Debug("Stream receive ended", "error", err)
			return
		}
		env, err := FromStruct(msg)
		if err != nil {
			c.log.Warn("Invalid stream envelope", "error", err)
			continue
		}
		select {
		case c.inbound <- env:
		case <-c.done:
			return
		}
	}
}

func (c *StreamConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		if c.release != nil {
			err = c.release()
		}
	})
	return err
}
