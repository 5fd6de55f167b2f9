// Package memory is an in-process transport. Every Dial creates a Conn whose
// emitted events are recorded and whose inbound side is fed by the caller.
package memory

import (
	"context"
	"fmt"
	"project-chat/contract"
	"project-chat/domain/event"
	"sync"
)

// ErrClosed is returned by Emit once the connection is closed.
var ErrClosed = fmt.Errorf("memory connection closed")

type Transport struct {
	mu         sync.Mutex
	bufferSize int
	conns      []*Conn
	dialErr    error
}

func NewTransport(bufferSize int) *Transport {
	return &Transport{bufferSize: bufferSize}
}

// FailDial makes every following Dial return err.
func (t *Transport) FailDial(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialErr = err
}

func (t *Transport) Dial(ctx context.Context, endpoint string) (contract.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dialErr != nil {
		return nil, t.dialErr
	}
	conn := &Conn{
		Endpoint: endpoint,
		inbound:  make(chan event.Envelope, t.bufferSize),
		done:     make(chan struct{}),
	}
	t.conns = append(t.conns, conn)
	return conn, nil
}

func (t *Transport) Conns() []*Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Conn(nil), t.conns...)
}

type Conn struct {
	Endpoint string

	mu      sync.Mutex
	emitted []event.Envelope
	closed  bool
	inbound chan event.Envelope
	done    chan struct{}
	once    sync.Once
}

func (c *Conn) Emit(_ context.Context, name event.Name, payload any) error {
	env, err := event.NewEnvelope(name, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.emitted = append(c.emitted, env)
	return nil
}

func (c *Conn) Inbound() <-chan event.Envelope {
	return c.inbound
}

// Deliver pushes an inbound event as if the remote side had sent it.
// It reports false when the connection is gone.
func (c *Conn) Deliver(env event.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.inbound <- env:
		return true
	case <-c.done:
		return false
	}
}

// Drop simulates the remote side going away.
func (c *Conn) Drop() {
	_ = c.Close()
}

func (c *Conn) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.closed = true
		close(c.inbound)
		c.mu.Unlock()
	})
	return nil
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Emitted returns a copy of everything written so far.
func (c *Conn) Emitted() []event.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Envelope(nil), c.emitted...)
}
