package main

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"project-chat/attachment"
	"project-chat/domain"
	"project-chat/errors"
	"project-chat/internal"
	"project-chat/services"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type commandKind int

const (
	cmdSend commandKind = iota
	cmdEmoji
	cmdAttach
	cmdHistory
	cmdStatus
	cmdHelp
	cmdQuit
)

type command struct {
	kind commandKind
	arg  string
}

// parseCommand maps a stdin line to an intent. Anything that is not a known
// slash command is message text.
func parseCommand(line string) command {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/emoji":
		return command{kind: cmdEmoji, arg: arg}
	case "/attach":
		return command{kind: cmdAttach, arg: arg}
	case "/history":
		return command{kind: cmdHistory}
	case "/status":
		return command{kind: cmdStatus}
	case "/help":
		return command{kind: cmdHelp}
	case "/quit", "/exit":
		return command{kind: cmdQuit}
	default:
		return command{kind: cmdSend, arg: line}
	}
}

type terminal struct {
	mu          sync.Mutex
	out         io.Writer
	user        domain.UserIdentity
	attachments *attachment.Registry
}

func newTerminal(out io.Writer, user domain.UserIdentity, attachments *attachment.Registry) *terminal {
	return &terminal{out: out, user: user, attachments: attachments}
}

func (t *terminal) Banner(config internal.ClientConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	header := fmt.Sprintf("  ====== project %s as %s (%s %s) ======", config.ProjectID, config.User, config.Transport, config.Endpoint)
	fmt.Fprintln(t.out, color.New(color.BgBlack, color.FgGreen).Render(header))
	fmt.Fprintln(t.out, "Type a message, or /emoji <e>, /attach <path>, /history, /status, /quit")
}

// PrintMessage runs after every append, local or remote.
func (t *terminal) PrintMessage(message domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	style := color.New(color.FgGreen)
	if message.Author == t.user {
		style = color.New(color.FgCyan)
	}
	line := fmt.Sprintf("[%s] %s: %s", message.Timestamp, message.Author, message.Text)
	if message.HasAttachment() {
		line += fmt.Sprintf(" [%s %s]", t.attachments.Kind(message.Attachment.URL), message.Attachment.URL)
	}
	fmt.Fprintln(t.out, style.Render(line))
}

func (t *terminal) printError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, color.New(color.FgRed).Render(err.Error()))
}

func (t *terminal) println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

// Handle applies one command and reports whether the client should exit.
func (t *terminal) Handle(ctx context.Context, service services.IChatService, cmd command) bool {
	var err error
	switch cmd.kind {
	case cmdQuit:
		return true
	case cmdHelp:
		t.println("/emoji <e>  /attach <path>  /history  /status  /quit")
	case cmdStatus:
		t.println(string(service.Status()))
	case cmdHistory:
		t.history(service.Messages())
	case cmdEmoji:
		err = service.SelectEmoji(cmd.arg)
	case cmdAttach:
		err = service.AttachFile(cmd.arg)
	case cmdSend:
		if err = service.SetText(cmd.arg); err == nil {
			_, err = service.RequestSend(ctx)
		}
	}
	switch {
	case err == nil:
	case stdErrors.Is(err, errors.ErrEmptyMessage):
	default:
		t.printError(err)
	}
	return false
}

func (t *terminal) history(messages []domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	table := tablewriter.NewWriter(t.out)
	table.SetHeader([]string{"Time", "Author", "Message", "Attachment"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, m := range messages {
		file := "-"
		if m.HasAttachment() {
			file = string(t.attachments.Kind(m.Attachment.URL)) + " " + m.Attachment.URL
		}
		table.Append([]string{m.Timestamp, string(m.Author), m.Text, file})
	}
	table.Render()
}
