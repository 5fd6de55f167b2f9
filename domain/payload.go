package domain

import (
	"fmt"
	"project-chat/errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// Payload is the wire shape of send_message and receive_message.
type Payload struct {
	Message   string       `json:"message" validate:"required_without=File"`
	User      UserIdentity `json:"user" validate:"required"`
	ProjectID ProjectID    `json:"projectId" validate:"required"`
	Timestamp string       `json:"timestamp" validate:"required"`
	File      *string      `json:"file" validate:"omitnil,min=1"`
}

func ToPayload(m Message) Payload {
	var file *string
	if m.HasAttachment() {
		file = lo.ToPtr(m.Attachment.URL)
	}
	return Payload{
		Message:   m.Text,
		User:      m.Author,
		ProjectID: m.ProjectID,
		Timestamp: m.Timestamp,
		File:      file,
	}
}

// FromPayload rejects payloads missing required fields instead of
// building a corrupt Message. Values are kept as received.
func FromPayload(p Payload) (Message, error) {
	if err := validate.Struct(p); err != nil {
		return Message{}, fmt.Errorf("%w: %w", errors.ErrInvalidPayload, err)
	}
	return Message{
		Text:       p.Message,
		Author:     p.User,
		ProjectID:  p.ProjectID,
		Timestamp:  p.Timestamp,
		Attachment: AttachmentRef{URL: lo.FromPtr(p.File)},
	}, nil
}
