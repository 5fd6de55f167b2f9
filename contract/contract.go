//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"project-chat/domain"
	"project-chat/domain/event"
	"reflect"
)

// Transport establishes real-time connections to an endpoint.
type Transport interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// Conn is one established real-time connection.
// Emit is fire-and-forget: a nil error only means the frame was written.
// Inbound is closed when the connection ends, for any reason.
type Conn interface {
	Emit(ctx context.Context, name event.Name, payload any) error
	Inbound() <-chan event.Envelope
	Close() error
}

type Sender interface {
	Send(ctx context.Context, message domain.Message) error
}

type LogStore interface {
	Append(message domain.Message)
	Snapshot() []domain.Message
}

// EventSink receives the envelopes broadcast to one relay participant.
type EventSink interface {
	Consume(ctx context.Context, e event.Envelope) error
}

type IRegistry interface {
	GetSinksForProject(projectID domain.ProjectID) []EventSink
	Subscribe(participantID string, projectID domain.ProjectID, sink EventSink)
	Unsubscribe(participantID string)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
