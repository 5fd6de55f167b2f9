package relay

import (
	"context"
	"project-chat/domain/event"
	"project-chat/errors"
)

// Sink buffers the envelopes broadcast to one participant until its
// connection writer picks them up.
type Sink struct {
	ParticipantID string
	Events        chan event.Envelope
}

func NewSink(participantID string, bufferSize int) *Sink {
	return &Sink{ParticipantID: participantID, Events: make(chan event.Envelope, bufferSize)}
}

// Consume never blocks the broadcaster: a slow participant loses the event.
func (s *Sink) Consume(ctx context.Context, e event.Envelope) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}
