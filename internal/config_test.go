package internal

import (
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestRelayConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config RelayConfig

	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.True(config.ExcludeSender)
	req.Empty(config.Words())
	req.Equal("*", config.CharReplacement)
}

func TestRelayConfig_Addresses(t *testing.T) {
	config := RelayConfig{Host: "0.0.0.0", WebSocketPort: 5000, GrpcPort: 5001}
	require.Equal(t, "0.0.0.0:5000", config.WebSocketAddress())
	require.Equal(t, "0.0.0.0:5001", config.GrpcAddress())
}

func TestRelayConfig_Words(t *testing.T) {
	config := RelayConfig{CensoredWords: " badger, ,snake,"}
	require.Equal(t, []string{"badger", "snake"}, config.Words())
}

func TestClientConfig(t *testing.T) {
	req := require.New(t)
	t.Setenv("CHAT_PROJECT_ID", "42")
	t.Setenv("CHAT_USER", "alice")
	t.Setenv("CHAT_TRANSPORT", "grpc")
	var config ClientConfig

	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.NoError(config.Validate())
	req.Equal("42", config.ProjectID)
	req.Equal("15:04:05", config.TimestampLayout)

	config.Transport = "carrier-pigeon"
	req.Error(config.Validate())
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("**")
	req.Error(err)
}
