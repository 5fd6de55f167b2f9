package domain

import (
	"encoding/json"
	"project-chat/errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestFromPayload_KeepsValuesAsReceived(t *testing.T) {
	req := require.New(t)
	raw := `{"message":"hi","user":"Bob","projectId":"p1","timestamp":"10:00:00","file":null}`

	var p Payload
	req.NoError(json.Unmarshal([]byte(raw), &p))
	msg, err := FromPayload(p)

	req.NoError(err)
	req.Equal(Message{
		Text:      "hi",
		Author:    "Bob",
		ProjectID: "p1",
		Timestamp: "10:00:00",
	}, msg)
}

func TestFromPayload_NumericProjectID(t *testing.T) {
	req := require.New(t)
	raw := `{"message":"hi","user":"bob","projectId":42,"timestamp":"10:00:00","file":null}`

	var p Payload
	req.NoError(json.Unmarshal([]byte(raw), &p))
	msg, err := FromPayload(p)

	req.NoError(err)
	req.Equal(ProjectID("42"), msg.ProjectID)
}

func TestFromPayload_AttachmentWithoutText(t *testing.T) {
	req := require.New(t)

	msg, err := FromPayload(Payload{
		User:      "bob",
		ProjectID: "p1",
		Timestamp: "10:00:00",
		File:      lo.ToPtr("https://cdn.example.com/a.png"),
	})

	req.NoError(err)
	req.Empty(msg.Text)
	req.Equal("https://cdn.example.com/a.png", msg.Attachment.URL)
}

func TestFromPayload_RejectsMalformed(t *testing.T) {
	valid := Payload{Message: "hi", User: "bob", ProjectID: "p1", Timestamp: "10:00:00"}

	tests := []struct {
		name   string
		mutate func(p Payload) Payload
	}{
		{"missing user", func(p Payload) Payload { p.User = ""; return p }},
		{"missing project", func(p Payload) Payload { p.ProjectID = ""; return p }},
		{"missing timestamp", func(p Payload) Payload { p.Timestamp = ""; return p }},
		{"no text and no file", func(p Payload) Payload { p.Message = ""; return p }},
		{"empty file", func(p Payload) Payload { p.Message = ""; p.File = lo.ToPtr(""); return p }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromPayload(tt.mutate(valid))
			require.ErrorIs(t, err, errors.ErrInvalidPayload)
		})
	}
}

func TestToPayload_Shape(t *testing.T) {
	req := require.New(t)
	msg := Message{Text: "hello", Author: "alice", ProjectID: "p1", Timestamp: "09:15:00"}

	data, err := json.Marshal(ToPayload(msg))

	req.NoError(err)
	req.JSONEq(`{"message":"hello","user":"alice","projectId":"p1","timestamp":"09:15:00","file":null}`, string(data))
}

func TestProjectID_UnmarshalRejectsObjects(t *testing.T) {
	var id ProjectID
	require.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
}
