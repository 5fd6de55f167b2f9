// Package domain contains core concepts of the chat system.
// This file defines Message values and the compose rule.
// Messages are immutable and validated by the domain.
package domain

import (
	"project-chat/errors"
	"strings"
	"time"
)

// TimestampLayout is the default display layout of Message.Timestamp.
const TimestampLayout = time.TimeOnly

// AttachmentRef points to an uploaded file or to a local blob
// owned by the sending process. Only the reference travels.
type AttachmentRef struct {
	URL string
}

func (a AttachmentRef) IsZero() bool {
	return a.URL == ""
}

// Message represents an immutable chat entry.
// Timestamp is a display string, not a sortable value.
type Message struct {
	Text       string
	Author     UserIdentity
	ProjectID  ProjectID
	Timestamp  string
	Attachment AttachmentRef
}

func (m Message) HasAttachment() bool {
	return !m.Attachment.IsZero()
}

// Compose builds the outgoing Message from what the user prepared.
// Any non-empty text wins over the selected emoji and is kept verbatim.
// It fails with ErrEmptyMessage when the text is blank and there is neither
// an emoji nor an attachment.
func Compose(text, selectedEmoji string, attachment AttachmentRef,
	author UserIdentity, projectID ProjectID, at time.Time, layout string) (Message, error) {
	if strings.TrimSpace(text) == "" && selectedEmoji == "" && attachment.IsZero() {
		return Message{}, errors.ErrEmptyMessage
	}
	if layout == "" {
		layout = TimestampLayout
	}
	return Message{
		Text:       EffectiveText(text, selectedEmoji),
		Author:     author,
		ProjectID:  projectID,
		Timestamp:  at.Format(layout),
		Attachment: attachment,
	}, nil
}

func EffectiveText(text, selectedEmoji string) string {
	if text != "" {
		return text
	}
	return selectedEmoji
}
