package main

import (
	"bytes"
	"context"
	"log/slog"
	"project-chat/attachment"
	"project-chat/services"
	"project-chat/session"
	"project-chat/transport/memory"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		expected command
	}{
		{"hello there", command{kind: cmdSend, arg: "hello there"}},
		{"/emoji 🎉", command{kind: cmdEmoji, arg: "🎉"}},
		{"/attach  /tmp/report.pdf ", command{kind: cmdAttach, arg: "/tmp/report.pdf"}},
		{"/history", command{kind: cmdHistory}},
		{"/status", command{kind: cmdStatus}},
		{"/quit", command{kind: cmdQuit}},
		{"/exit", command{kind: cmdQuit}},
		{"", command{kind: cmdSend, arg: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.expected, parseCommand(tt.line))
		})
	}
}

func TestTerminal_Handle(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	attachments := attachment.NewRegistry(log)
	var out bytes.Buffer
	term := newTerminal(&out, "alice", attachments)
	service := services.NewChatService(log, memory.NewTransport(8), attachments, services.Options{
		Session:   session.Config{EndpointAddress: "memory://relay"},
		Clock:     func() time.Time { return time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC) },
		OnMessage: term.PrintMessage,
	})
	ctx := context.Background()
	req.NoError(service.OpenChat(ctx, "p1", "alice"))
	defer service.CloseChat()
	joined, err := service.Joined()
	req.NoError(err)
	<-joined

	// When alice sends a line and picks an emoji for the next one
	req.False(term.Handle(ctx, service, parseCommand("hello")))
	req.False(term.Handle(ctx, service, parseCommand("/emoji 🎉")))
	req.False(term.Handle(ctx, service, parseCommand("")))

	// Then both are printed
	req.Contains(out.String(), "[09:30:00] alice: hello")
	req.Contains(out.String(), "[09:30:00] alice: 🎉")
	req.Len(service.Messages(), 2)

	// And the history lists them
	out.Reset()
	req.False(term.Handle(ctx, service, parseCommand("/history")))
	req.Contains(out.String(), "hello")
	req.Contains(out.String(), "🎉")

	// And quitting is reported
	req.True(term.Handle(ctx, service, parseCommand("/quit")))
}
