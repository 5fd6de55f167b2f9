package compose

import (
	"context"
	"fmt"
	"log/slog"
	"project-chat/domain"
	"project-chat/errors"
	"project-chat/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC) }

func newController(t *testing.T) (*Controller, *mocks.MockSender, *mocks.MockLogStore) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	store := mocks.NewMockLogStore(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	c := NewController(log, sender, store, "alice", "p1").WithClock(fixedNow, "")
	return c, sender, store
}

func TestController_RequestSend_Text(t *testing.T) {
	req := require.New(t)
	c, sender, store := newController(t)
	expected := domain.Message{Text: "hello", Author: "alice", ProjectID: "p1", Timestamp: "09:30:00"}

	// Given the user typed some text
	c.SetText("hello")

	// Then the message is sent first, then appended
	gomock.InOrder(
		sender.EXPECT().Send(gomock.Any(), expected).Return(nil),
		store.EXPECT().Append(expected),
	)

	// When the user sends
	msg, err := c.RequestSend(context.Background())

	req.NoError(err)
	req.Equal(expected, msg)
	req.True(c.Pending().IsEmpty())
}

func TestController_RequestSend_Empty(t *testing.T) {
	req := require.New(t)
	c, sender, store := newController(t)

	// Given nothing but whitespace
	c.SetText("   ")

	// Then neither the transport nor the log is touched
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
	store.EXPECT().Append(gomock.Any()).Times(0)

	_, err := c.RequestSend(context.Background())

	req.ErrorIs(err, errors.ErrEmptyMessage)
	// And the pending state is left untouched
	req.Equal(PendingCompose{Text: "   "}, c.Pending())
}

func TestController_RequestSend_EmojiOnly(t *testing.T) {
	req := require.New(t)
	c, sender, store := newController(t)
	c.SelectEmoji("🎉")

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().Append(gomock.Any())

	msg, err := c.RequestSend(context.Background())

	req.NoError(err)
	req.Equal("🎉", msg.Text)
	req.True(c.Pending().IsEmpty())
}

func TestController_RequestSend_BlankTextKeptVerbatim(t *testing.T) {
	req := require.New(t)
	c, sender, store := newController(t)

	// Given blank text with an emoji, then blank text with a file
	c.SetText("  ")
	c.SelectEmoji("🎉")
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	store.EXPECT().Append(gomock.Any()).Times(2)

	withEmoji, err := c.RequestSend(context.Background())
	req.NoError(err)

	c.SetText("  ")
	c.AttachFile(domain.AttachmentRef{URL: "blob:x"})
	withFile, err := c.RequestSend(context.Background())
	req.NoError(err)

	// Then the text is sent exactly as typed both times
	req.Equal("  ", withEmoji.Text)
	req.Equal("  ", withFile.Text)
	req.Equal("blob:x", withFile.Attachment.URL)
}

func TestController_RequestSend_AttachmentOnly(t *testing.T) {
	req := require.New(t)
	c, sender, store := newController(t)
	ref := domain.AttachmentRef{URL: "blob:0b7f4a0e"}
	c.AttachFile(ref)

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().Append(gomock.Any())

	msg, err := c.RequestSend(context.Background())

	req.NoError(err)
	req.Empty(msg.Text)
	req.Equal(ref, msg.Attachment)
}

func TestController_RequestSend_NotConnectedStillAppends(t *testing.T) {
	req := require.New(t)
	c, sender, store := newController(t)
	c.SetText("offline")

	// Given the session is not connected
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w (closed)", errors.ErrNotConnected))
	// Then the optimistic append still happens
	store.EXPECT().Append(gomock.Any()).Times(1)

	msg, err := c.RequestSend(context.Background())

	// And the failure is reported to the caller
	req.ErrorIs(err, errors.ErrNotConnected)
	req.Equal("offline", msg.Text)
	req.True(c.Pending().IsEmpty())
}

func TestController_AttachFile_Replaces(t *testing.T) {
	req := require.New(t)
	c, _, _ := newController(t)
	first := domain.AttachmentRef{URL: "blob:first"}
	second := domain.AttachmentRef{URL: "blob:second"}

	req.True(c.AttachFile(first).IsZero())
	req.Equal(first, c.AttachFile(second))
	req.Equal(second, c.Pending().Attachment)
}
