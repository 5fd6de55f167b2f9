// Package session owns the transport connection of one project channel.
//
// Join and send are fire-and-forget: the transport never acknowledges
// join_project or send_message, and a nil error from Send only means the
// frame left this process. Do not build delivery semantics on top of it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"project-chat/contract"
	"project-chat/domain"
	"project-chat/domain/event"
	"project-chat/errors"
	"sync"
)

type State int

const (
	Unopened State = iota
	Opening
	Joined
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Opening:
		return "opening"
	case Joined:
		return "joined"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config targets the transport endpoint, e.g. ws://localhost:5000/ws.
type Config struct {
	EndpointAddress string
}

// Session is the channel of one project. There is no way back from Closed:
// a new project, or a reconnect, needs a new Session.
type Session struct {
	log       *slog.Logger
	transport contract.Transport
	config    Config
	projectID domain.ProjectID

	mu      sync.Mutex
	state   State
	conn    contract.Conn
	handler func(domain.Message)
	cause   error
	cancel  context.CancelFunc
	joined  chan struct{}
	closing chan struct{}

	// deliverMu is held while the handler runs so Close can wait for it.
	deliverMu sync.Mutex
	wg        sync.WaitGroup
}

func New(log *slog.Logger, transport contract.Transport, config Config, projectID domain.ProjectID) *Session {
	return &Session{
		log:       log.With("project_id", projectID.String()),
		transport: transport,
		config:    config,
		projectID: projectID,
		state:     Unopened,
		joined:    make(chan struct{}),
		closing:   make(chan struct{}),
	}
}

func (s *Session) ProjectID() domain.ProjectID {
	return s.projectID
}

// OnReceive registers the single handler of inbound messages.
// It runs on the session reader goroutine, once per message, in receipt
// order. It must be fast and must not call Close.
func (s *Session) OnReceive(handler func(domain.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler != nil {
		return errors.ErrHandlerAlreadyRegistered
	}
	s.handler = handler
	return nil
}

// Open starts connecting and returns without waiting.
// Once connected, join_project is emitted and the session becomes Joined.
// Joined and Done report the outcome.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unopened {
		return errors.ErrSessionAlreadyOpened
	}
	dialCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = Opening

	s.wg.Add(1)
	go s.connect(dialCtx)
	return nil
}

func (s *Session) connect(ctx context.Context) {
	defer s.wg.Done()

	conn, err := s.transport.Dial(ctx, s.config.EndpointAddress)
	if err != nil {
		s.log.Warn("Connection failed", "endpoint", s.config.EndpointAddress, "error", err)
		s.fail(fmt.Errorf("%w: %w", errors.ErrTransportDisconnected, err))
		return
	}

	if err = conn.Emit(ctx, event.JoinProject, s.projectID); err != nil {
		s.log.Warn("Join failed", "error", err)
		_ = conn.Close()
		s.fail(fmt.Errorf("%w: %w", errors.ErrTransportDisconnected, err))
		return
	}

	s.mu.Lock()
	if s.state != Opening {
		// Closed while dialing
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.state = Joined
	close(s.joined)
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Debug("Joined project", "endpoint", s.config.EndpointAddress)
	go s.read(conn)
}

func (s *Session) read(conn contract.Conn) {
	defer s.wg.Done()
	inbound := conn.Inbound()
	for {
		select {
		case <-s.closing:
			return
		case env, ok := <-inbound:
			if !ok {
				s.fail(errors.ErrTransportDisconnected)
				return
			}
			s.deliver(env)
		}
	}
}

// deliver drops anything that is not a well-formed receive_message.
func (s *Session) deliver(env event.Envelope) {
	if env.Event != event.ReceiveMessage {
		s.log.Debug("Ignoring inbound event", "event", string(env.Event))
		return
	}
	payload, err := env.DecodeMessage()
	if err != nil {
		s.log.Warn("Dropping undecodable message", "error", err)
		return
	}
	message, err := domain.FromPayload(payload)
	if err != nil {
		s.log.Warn("Dropping malformed message", "error", err)
		return
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	s.mu.Lock()
	handler, live := s.handler, s.state == Joined
	s.mu.Unlock()
	if !live {
		return
	}
	if handler == nil {
		s.log.Debug("No receive handler registered, message dropped")
		return
	}
	handler(message)
}

// Send forwards the message over the transport. It fails with
// ErrNotConnected unless the session is Joined. A write failure is treated
// as a disconnect.
func (s *Session) Send(ctx context.Context, message domain.Message) error {
	s.mu.Lock()
	conn, state := s.conn, s.state
	s.mu.Unlock()
	if state != Joined {
		return fmt.Errorf("%w (%s)", errors.ErrNotConnected, state)
	}

	if err := conn.Emit(ctx, event.SendMessage, domain.ToPayload(message)); err != nil {
		cause := fmt.Errorf("%w: %w", errors.ErrTransportDisconnected, err)
		s.fail(cause)
		return cause
	}
	return nil
}

// Close releases the connection. It is safe to call more than once.
// When it returns, the handler is not running and will not run again.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		s.wg.Wait()
		return nil
	}
	conn, wasOpen := s.shutdown(nil)
	s.mu.Unlock()

	// Barrier: wait for an in-flight handler call.
	s.deliverMu.Lock()
	s.deliverMu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	s.wg.Wait()
	if wasOpen {
		s.log.Debug("Session closed")
	}
	return err
}

// fail moves the session to Closed after a transport-level failure.
func (s *Session) fail(cause error) {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	conn, _ := s.shutdown(cause)
	s.mu.Unlock()

	s.log.Warn("Session disconnected", "error", cause)
	if conn != nil {
		_ = conn.Close()
	}
}

// shutdown must be called with mu held.
func (s *Session) shutdown(cause error) (contract.Conn, bool) {
	wasOpen := s.state != Unopened
	s.state = Closed
	s.cause = cause
	if s.cancel != nil {
		s.cancel()
	}
	close(s.closing)
	conn := s.conn
	s.conn = nil
	return conn, wasOpen
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Connected() bool {
	return s.State() == Joined
}

// Err reports why the session closed on its own, nil after an explicit Close.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// Joined is closed once join_project has been emitted.
func (s *Session) Joined() <-chan struct{} {
	return s.joined
}

// Done is closed when the session reaches Closed.
func (s *Session) Done() <-chan struct{} {
	return s.closing
}
