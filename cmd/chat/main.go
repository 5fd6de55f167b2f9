package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"project-chat/attachment"
	"project-chat/contract"
	"project-chat/domain"
	"project-chat/internal"
	"project-chat/services"
	"project-chat/session"
	grpctransport "project-chat/transport/grpc"
	wstransport "project-chat/transport/websocket"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.ClientConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Chat service
	attachments := attachment.NewRegistry(log)
	user := domain.UserIdentity(config.User)
	terminal := newTerminal(os.Stdout, user, attachments)
	service := services.NewChatService(log, newTransport(log, config), attachments, services.Options{
		Session:         session.Config{EndpointAddress: config.Endpoint},
		TimestampLayout: config.TimestampLayout,
		OnMessage:       terminal.PrintMessage,
	})

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.OpenChat(ctx, domain.ProjectID(config.ProjectID), user); err != nil {
		return fmt.Errorf("open chat: %w", err)
	}
	defer func() { _ = service.CloseChat() }()
	terminal.Banner(config)

	// 4. One line of stdin per intent
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := terminal.Handle(ctx, service, parseCommand(line)); quit {
				return nil
			}
		}
	}
}

func newTransport(log *slog.Logger, config internal.ClientConfig) contract.Transport {
	if config.Transport == internal.TransportGrpc {
		return grpctransport.NewTransport(log, config.BufferSize)
	}
	return wstransport.NewTransport(log, config.BufferSize)
}
