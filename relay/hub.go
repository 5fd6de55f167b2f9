// Package relay is a reference server for the project chat protocol.
// Clients join a project with join_project, post with send_message and get
// every post of the project back as receive_message.
package relay

import (
	"context"
	"log/slog"
	"project-chat/contract"
	"project-chat/domain"
	"project-chat/domain/event"
	"project-chat/moderation"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultBufferSize = 64

type Options struct {
	// ExcludeSender keeps a post from being echoed to its own connection.
	ExcludeSender bool
	BufferSize    int
	// Moderator is optional; nil relays text untouched.
	Moderator *moderation.Moderator
}

type Hub struct {
	log      *slog.Logger
	registry contract.IRegistry
	options  Options
	counters counters
}

type counters struct {
	connected atomic.Int64
	relayed   atomic.Uint64
	censored  atomic.Uint64
	dropped   atomic.Uint64
	lost      atomic.Uint64
}

// Stats counts since start: live connections, posts relayed, posts
// censored, inbound frames dropped and deliveries lost to full buffers.
type Stats struct {
	Connected int64
	Relayed   uint64
	Censored  uint64
	Dropped   uint64
	Lost      uint64
}

func (h *Hub) Stats() Stats {
	return Stats{
		Connected: h.counters.connected.Load(),
		Relayed:   h.counters.relayed.Load(),
		Censored:  h.counters.censored.Load(),
		Dropped:   h.counters.dropped.Load(),
		Lost:      h.counters.lost.Load(),
	}
}

func NewHub(log *slog.Logger, registry contract.IRegistry, options Options) *Hub {
	if options.BufferSize <= 0 {
		options.BufferSize = defaultBufferSize
	}
	return &Hub{log: log, registry: registry, options: options}
}

// participant is the relay side of one client connection.
type participant struct {
	id      string
	sink    *Sink
	project domain.ProjectID
	joined  bool
}

// Serve handles one connection until its inbound side ends, ctx is done or
// a write fails. The participant is unsubscribed before Serve returns.
func (h *Hub) Serve(ctx context.Context, conn contract.Conn) error {
	p := &participant{id: uuid.NewString()}
	p.sink = NewSink(p.id, h.options.BufferSize)
	log := h.log.With("participant_id", p.id)
	h.counters.connected.Add(1)
	defer h.counters.connected.Add(-1)
	defer h.registry.Unsubscribe(p.id)

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		writeErr <- h.write(ctx, conn, p.sink)
	}()

	log.Debug("Participant connected")
	inbound := conn.Inbound()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Participant context done")
			return nil
		case err := <-writeErr:
			if err != nil {
				log.Warn("Failed to push event to participant", "error", err)
			}
			return err
		case env, ok := <-inbound:
			if !ok {
				log.Debug("Participant disconnected", "project_id", p.project.String())
				return nil
			}
			h.handle(ctx, log, p, env)
		}
	}
}

func (h *Hub) write(ctx context.Context, conn contract.Conn, sink *Sink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-sink.Events:
			if err := conn.Emit(ctx, env.Event, env.Data); err != nil {
				return err
			}
		}
	}
}

func (h *Hub) handle(ctx context.Context, log *slog.Logger, p *participant, env event.Envelope) {
	switch env.Event {
	case event.JoinProject:
		projectID, err := env.DecodeProjectID()
		if err != nil || projectID == "" {
			h.counters.dropped.Add(1)
			log.Warn("Dropping invalid join", "error", err)
			return
		}
		h.registry.Subscribe(p.id, projectID, p.sink)
		p.project, p.joined = projectID, true
		log.Info("Participant joined project", "project_id", projectID.String())

	case event.SendMessage:
		payload, err := env.DecodeMessage()
		if err != nil {
			h.counters.dropped.Add(1)
			log.Warn("Dropping undecodable message", "error", err)
			return
		}
		message, err := domain.FromPayload(payload)
		if err != nil {
			h.counters.dropped.Add(1)
			log.Warn("Dropping malformed message", "error", err)
			return
		}
		if !p.joined || message.ProjectID != p.project {
			h.counters.dropped.Add(1)
			log.Warn("Dropping message for a project the participant did not join",
				"project_id", message.ProjectID.String())
			return
		}
		h.broadcast(ctx, log, p, h.censor(log, message))

	default:
		log.Debug("Ignoring event", "event", string(env.Event))
	}
}

func (h *Hub) censor(log *slog.Logger, message domain.Message) domain.Message {
	text, matches := h.options.Moderator.Censor(message.Text)
	if matches > 0 {
		h.counters.censored.Add(1)
		log.Info("Message censored", "project_id", message.ProjectID.String(), "matches", matches)
		message.Text = text
	}
	return message
}

func (h *Hub) broadcast(ctx context.Context, log *slog.Logger, from *participant, message domain.Message) {
	env, err := event.NewEnvelope(event.ReceiveMessage, domain.ToPayload(message))
	if err != nil {
		log.Error("Failed to encode broadcast", "error", err)
		return
	}
	sinks := h.registry.GetSinksForProject(message.ProjectID)
	if h.options.ExcludeSender {
		sinks = lo.Reject(sinks, func(s contract.EventSink, _ int) bool {
			return s == contract.EventSink(from.sink)
		})
	}
	h.counters.relayed.Add(1)
	for _, sink := range sinks {
		if err := sink.Consume(ctx, env); err != nil {
			h.counters.lost.Add(1)
			log.Warn("Event lost for a participant", "project_id", message.ProjectID.String(), "error", err)
		}
	}
}
