// Package e2e drives a running relay with real client sessions.
package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_WS_ENDPOINT is e.g. ws://localhost:5000/ws; empty skips the websocket scenarios
	WebSocketEndpoint string `envconfig:"RELAY_WS_ENDPOINT"`
	// RELAY_GRPC_ADDR is e.g. localhost:5001; empty skips the gRPC scenarios
	GrpcAddr string `envconfig:"RELAY_GRPC_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
