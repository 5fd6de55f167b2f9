package services

import (
	"context"
	"log/slog"
	"project-chat/attachment"
	"project-chat/compose"
	"project-chat/contract"
	"project-chat/domain"
	"project-chat/errors"
	"project-chat/projection"
	"project-chat/session"
	"sync"
	"time"
)

type Status string

const (
	StatusConnected    Status = "connected"
	StatusNotConnected Status = "not connected"
)

// IChatService is what a presentation layer talks to.
type IChatService interface {
	OpenChat(ctx context.Context, projectID domain.ProjectID, user domain.UserIdentity) error
	CloseChat() error
	SetText(text string) error
	SelectEmoji(emoji string) error
	AttachFile(path string) error
	RequestSend(ctx context.Context) (domain.Message, error)
	Messages() []domain.Message
	Status() Status
}

type Options struct {
	Session         session.Config
	TimestampLayout string
	Clock           func() time.Time
	// OnMessage is called after every append, local or remote.
	OnMessage func(domain.Message)
}

// chat is everything tied to one open project.
type chat struct {
	session  *session.Session
	timeline *projection.Timeline
	composer *compose.Controller
}

// ChatService serializes OpenChat and CloseChat with lifecycleMu. mu only
// guards the active chat pointer and is never held while a session closes,
// so listeners may call the read methods at any time.
type ChatService struct {
	lifecycleMu sync.Mutex
	mu          sync.Mutex
	log         *slog.Logger
	transport   contract.Transport
	attachments *attachment.Registry
	options     Options
	active      *chat
}

func NewChatService(log *slog.Logger, transport contract.Transport, attachments *attachment.Registry, options Options) *ChatService {
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return &ChatService{log: log, transport: transport, attachments: attachments, options: options}
}

// OpenChat closes the current chat, if any, before joining the new project,
// so there is never more than one membership.
func (s *ChatService) OpenChat(ctx context.Context, projectID domain.ProjectID, user domain.UserIdentity) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if err := s.close(s.detach()); err != nil {
		s.log.Warn("Previous chat did not close cleanly", "error", err)
	}

	timeline := projection.NewTimeline(projectID)
	if s.options.OnMessage != nil {
		timeline.OnAppend(s.options.OnMessage)
	}
	sess := session.New(s.log, s.transport, s.options.Session, projectID)
	if err := sess.OnReceive(timeline.Append); err != nil {
		return err
	}
	composer := compose.NewController(s.log, sess, timeline, user, projectID).
		WithClock(s.options.Clock, s.options.TimestampLayout)

	if err := sess.Open(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.active = &chat{session: sess, timeline: timeline, composer: composer}
	s.mu.Unlock()
	s.log.Info("Chat opened", "project_id", projectID.String(), "user", string(user))
	return nil
}

// CloseChat leaves the project, drops its log and releases local attachments.
// It must not be called from OnMessage.
func (s *ChatService) CloseChat() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	return s.close(s.detach())
}

// detach makes the active chat unreachable to every other method.
func (s *ChatService) detach() *chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.active
	s.active = nil
	return c
}

// close runs without mu: session.Close waits for a running listener.
func (s *ChatService) close(c *chat) error {
	if c == nil {
		return nil
	}
	projectID := c.session.ProjectID()
	err := c.session.Close()
	released := s.attachments.ReleaseAll()
	s.log.Info("Chat closed", "project_id", projectID.String(), "released_attachments", released)
	return err
}

func (s *ChatService) current() (*chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, errors.ErrChatClosed
	}
	return s.active, nil
}

func (s *ChatService) SetText(text string) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	c.composer.SetText(text)
	return nil
}

func (s *ChatService) SelectEmoji(emoji string) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	c.composer.SelectEmoji(emoji)
	return nil
}

// AttachFile acquires a local reference for path. A pending attachment it
// replaces is released right away.
func (s *ChatService) AttachFile(path string) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	ref, err := s.attachments.Acquire(path)
	if err != nil {
		return err
	}

	// ReleaseAll of a closing chat runs after detach.
	s.mu.Lock()
	if s.active != c {
		s.mu.Unlock()
		s.attachments.Release(ref.URL)
		return errors.ErrChatClosed
	}
	replaced := c.composer.AttachFile(ref)
	s.mu.Unlock()

	if !replaced.IsZero() {
		s.attachments.Release(replaced.URL)
	}
	return nil
}

func (s *ChatService) RequestSend(ctx context.Context) (domain.Message, error) {
	c, err := s.current()
	if err != nil {
		return domain.Message{}, err
	}
	return c.composer.RequestSend(ctx)
}

// Pending exposes the prepared state for display.
func (s *ChatService) Pending() (compose.PendingCompose, error) {
	c, err := s.current()
	if err != nil {
		return compose.PendingCompose{}, err
	}
	return c.composer.Pending(), nil
}

func (s *ChatService) Messages() []domain.Message {
	c, err := s.current()
	if err != nil {
		return nil
	}
	return c.timeline.Snapshot()
}

func (s *ChatService) Status() Status {
	c, err := s.current()
	if err != nil || !c.session.Connected() {
		return StatusNotConnected
	}
	return StatusConnected
}

// Joined is closed once the current chat has joined its project.
func (s *ChatService) Joined() (<-chan struct{}, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	return c.session.Joined(), nil
}
