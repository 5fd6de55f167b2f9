package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"project-chat/internal"
	"project-chat/moderation"
	"project-chat/relay"
	"project-chat/runtime"
	"project-chat/runtime/workers"
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

// run wires the relay and blocks until SIGINT or SIGTERM.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.RelayConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(config.Words(), replacement)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	// 2. Membership & broadcasting
	registry := runtime.NewRegistry()
	hub := relay.NewHub(log, registry, relay.Options{
		ExcludeSender: config.ExcludeSender,
		BufferSize:    config.ConnectionBufferSize,
		Moderator:     moderator,
	})

	// 3. Servers, one supervised worker each
	wsServer := relay.NewWebSocketServer(log, config.WebSocketAddress(),
		relay.NewWebSocketHandler(log, hub, config.ConnectionBufferSize)).
		Handle("/inspect", internal.NewInspectHandler(registry.Projects, func() map[string]any {
			stats := hub.Stats()
			return map[string]any{
				"exclude_sender": config.ExcludeSender,
				"censored_words": len(config.Words()),
				"grpc_address":   config.GrpcAddress(),
				"connected":      stats.Connected,
				"relayed":        stats.Relayed,
				"censored":       stats.Censored,
				"dropped":        stats.Dropped,
				"lost":           stats.Lost,
			}
		}))
	grpcServer := relay.NewGrpcServer(log, config.GrpcAddress(),
		relay.NewGrpcRelay(log, hub, config.ConnectionBufferSize))

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(wsServer, grpcServer)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Relay starting",
		"websocket", config.WebSocketAddress(),
		"grpc", config.GrpcAddress(),
		"exclude_sender", config.ExcludeSender)

	// 5. Blocks until every server stopped
	sup.Run(ctx)
	log.Info("Relay stopped cleanly")
	return nil
}
