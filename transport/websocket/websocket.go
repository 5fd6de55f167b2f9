// Package websocket carries envelopes as JSON text frames over gorilla/websocket.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"project-chat/contract"
	"project-chat/domain/event"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 10 * time.Second

type Transport struct {
	log        *slog.Logger
	dialer     *websocket.Dialer
	bufferSize int
}

func NewTransport(log *slog.Logger, bufferSize int) *Transport {
	return &Transport{
		log: log,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		bufferSize: bufferSize,
	}
}

func (t *Transport) Dial(ctx context.Context, endpoint string) (contract.Conn, error) {
	ws, _, err := t.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", endpoint, err)
	}
	c := NewConn(t.log, ws, t.bufferSize)
	go c.readLoop()
	return c, nil
}

// Conn wraps one websocket. Writes are serialised; a single goroutine reads.
type Conn struct {
	log     *slog.Logger
	ws      *websocket.Conn
	writeMu sync.Mutex
	inbound chan event.Envelope
	done    chan struct{}
	once    sync.Once
}

func NewConn(log *slog.Logger, ws *websocket.Conn, bufferSize int) *Conn {
	return &Conn{
		log:     log,
		ws:      ws,
		inbound: make(chan event.Envelope, bufferSize),
		done:    make(chan struct{}),
	}
}

func (c *Conn) Emit(ctx context.Context, name event.Name, payload any) error {
	env, err := event.NewEnvelope(name, payload)
	if err != nil {
		return err
	}
	return c.WriteEnvelope(ctx, env)
}

func (c *Conn) WriteEnvelope(ctx context.Context, env event.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteTimeout)
	}
	return c.write(deadline, data)
}

func (c *Conn) write(deadline time.Time, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return fmt.Errorf("websocket closed")
	default:
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Inbound() <-chan event.Envelope {
	return c.inbound
}

// ReadEnvelopes runs the read loop on the calling goroutine.
// It returns when the socket fails or is closed.
func (c *Conn) ReadEnvelopes() {
	c.readLoop()
}

func (c *Conn) readLoop() {
	defer close(c.inbound)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Websocket read error", "error", err)
			}
			return
		}
		var env event.Envelope
		if err = json.Unmarshal(data, &env); err != nil {
			c.log.Warn("Invalid websocket frame", "error", err)
			continue
		}
		select {
		case c.inbound <- env:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}
