// Package compose turns what the user prepared into one outgoing Message.
package compose

import (
	"context"
	"log/slog"
	"project-chat/contract"
	"project-chat/domain"
	"sync"
	"time"
)

// PendingCompose is everything the user prepared for the next message.
// At most one attachment is pending: a new one replaces the previous.
type PendingCompose struct {
	Text          string
	SelectedEmoji string
	Attachment    domain.AttachmentRef
}

func (p PendingCompose) IsEmpty() bool {
	return p.Text == "" && p.SelectedEmoji == "" && p.Attachment.IsZero()
}

type Controller struct {
	mu        sync.Mutex
	log       *slog.Logger
	sender    contract.Sender
	store     contract.LogStore
	author    domain.UserIdentity
	projectID domain.ProjectID
	layout    string
	now       func() time.Time
	pending   PendingCompose
}

func NewController(log *slog.Logger, sender contract.Sender, store contract.LogStore,
	author domain.UserIdentity, projectID domain.ProjectID) *Controller {
	return &Controller{
		log:       log,
		sender:    sender,
		store:     store,
		author:    author,
		projectID: projectID,
		layout:    domain.TimestampLayout,
		now:       time.Now,
	}
}

// WithClock overrides the wall clock and the timestamp layout.
func (c *Controller) WithClock(now func() time.Time, layout string) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	if layout != "" {
		c.layout = layout
	}
	return c
}

func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Text = text
}

func (c *Controller) SelectEmoji(emoji string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.SelectedEmoji = emoji
}

// AttachFile sets the pending attachment and returns the one it replaced.
func (c *Controller) AttachFile(ref domain.AttachmentRef) domain.AttachmentRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	replaced := c.pending.Attachment
	c.pending.Attachment = ref
	return replaced
}

func (c *Controller) Pending() PendingCompose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// RequestSend composes the pending state. On ErrEmptyMessage nothing happens.
// Otherwise the message is sent and appended to the log, both unconditionally,
// and the pending state is cleared. A send failure is returned with the
// message; the optimistic append has already happened.
func (c *Controller) RequestSend(ctx context.Context) (domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	message, err := domain.Compose(c.pending.Text, c.pending.SelectedEmoji, c.pending.Attachment,
		c.author, c.projectID, c.now(), c.layout)
	if err != nil {
		return domain.Message{}, err
	}

	sendErr := c.sender.Send(ctx, message)
	if sendErr != nil {
		c.log.Warn("Message not sent", "project_id", c.projectID.String(), "error", sendErr)
	}
	c.store.Append(message)
	c.pending = PendingCompose{}
	return message, sendErr
}
