package errors

import "fmt"

var (
	ErrEmptyMessage             = fmt.Errorf("message has no text, emoji or attachment")
	ErrInvalidPayload           = fmt.Errorf("invalid message payload")
	ErrNotConnected             = fmt.Errorf("session is not connected")
	ErrTransportDisconnected    = fmt.Errorf("transport disconnected")
	ErrSessionAlreadyOpened     = fmt.Errorf("session already opened")
	ErrHandlerAlreadyRegistered = fmt.Errorf("receive handler already registered")
	ErrChatClosed               = fmt.Errorf("no chat is open")
	ErrUnknownAttachment        = fmt.Errorf("unknown attachment reference")
	ErrInvalidAttachment        = fmt.Errorf("attachment is not a regular file")
	ErrWorkerPanic              = fmt.Errorf("worker panic")
	ErrSinkFull                 = fmt.Errorf("participant buffer is full")
)
