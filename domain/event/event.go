// Package event defines the logical events exchanged with the transport.
package event

import (
	"encoding/json"
	"fmt"
	"project-chat/domain"
)

type Name string

const (
	JoinProject    Name = "join_project"
	SendMessage    Name = "send_message"
	ReceiveMessage Name = "receive_message"
)

// Envelope is one event on the wire: {"event": ..., "data": ...}.
type Envelope struct {
	Event Name            `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func NewEnvelope(name Name, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s payload: %w", name, err)
	}
	return Envelope{Event: name, Data: data}, nil
}

func (e Envelope) DecodeMessage() (domain.Payload, error) {
	var p domain.Payload
	if err := json.Unmarshal(e.Data, &p); err != nil {
		return domain.Payload{}, err
	}
	return p, nil
}

func (e Envelope) DecodeProjectID() (domain.ProjectID, error) {
	var id domain.ProjectID
	if err := json.Unmarshal(e.Data, &id); err != nil {
		return "", err
	}
	return id, nil
}
