// Package domain contains core concepts of the chat system.
// This file defines the identities a channel is keyed by.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserIdentity is the opaque display name or identifier of a sender.
type UserIdentity string

// ProjectID identifies the single logical channel of a project.
// The wire accepts a JSON string or number, both normalised to a string.
type ProjectID string

func (p ProjectID) String() string {
	return string(p)
}

func (p ProjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

func (p *ProjectID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = ProjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("project id must be a string or a number: %w", err)
	}
	*p = ProjectID(n.String())
	return nil
}
