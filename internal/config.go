package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// RelayConfig is read from the environment by cmd/relay.
type RelayConfig struct {
	Host                 string        `env:"HOST,default=localhost"`
	WebSocketPort        int           `env:"WS_PORT,default=5000"`
	GrpcPort             int           `env:"GRPC_PORT,default=5001"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	ExcludeSender        bool          `env:"EXCLUDE_SENDER,default=true"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
}

func (c RelayConfig) WebSocketAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.WebSocketPort)
}

func (c RelayConfig) GrpcAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GrpcPort)
}

// Words splits CENSORED_WORDS on commas, ignoring blanks.
func (c RelayConfig) Words() []string {
	return lo.Compact(lo.Map(strings.Split(c.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	}))
}

const (
	TransportWebSocket = "websocket"
	TransportGrpc      = "grpc"
)

// ClientConfig is read from the environment by cmd/chat.
type ClientConfig struct {
	Endpoint        string `env:"CHAT_ENDPOINT,default=ws://localhost:5000/ws"`
	Transport       string `env:"CHAT_TRANSPORT,default=websocket"`
	ProjectID       string `env:"CHAT_PROJECT_ID,required=true"`
	User            string `env:"CHAT_USER,required=true"`
	TimestampLayout string `env:"TIMESTAMP_LAYOUT,default=15:04:05"`
	BufferSize      int    `env:"CONNECTION_BUFFER_SIZE,default=64"`
	LogLevel        string `env:"LOG_LEVEL,default=WARN"`
}

func (c ClientConfig) Validate() error {
	if !lo.Contains([]string{TransportWebSocket, TransportGrpc}, c.Transport) {
		return fmt.Errorf("CHAT_TRANSPORT must be %q or %q, got %q", TransportWebSocket, TransportGrpc, c.Transport)
	}
	return nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
