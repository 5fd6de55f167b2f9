package e2e

import (
	"context"
	"log/slog"
	"project-chat/contract"
	"project-chat/domain"
	grpctransport "project-chat/transport/grpc"
	wstransport "project-chat/transport/websocket"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type testProjectChatSuite struct {
	BaseRelaySuite
}

func TestProjectChatSuite(t *testing.T) {
	suite.Run(t, &testProjectChatSuite{})
}

func (s *testProjectChatSuite) TestWebSocketExchange() {
	if s.Config.WebSocketEndpoint == "" {
		s.T().Skip("RELAY_WS_ENDPOINT not set")
	}
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s.exchange(func() contract.Transport { return wstransport.NewTransport(log, 16) }, s.Config.WebSocketEndpoint)
}

func (s *testProjectChatSuite) TestGrpcExchange() {
	if s.Config.GrpcAddr == "" {
		s.T().Skip("RELAY_GRPC_ADDR not set")
	}
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s.exchange(func() contract.Transport { return grpctransport.NewTransport(log, 16) }, s.Config.GrpcAddr)
}

func (s *testProjectChatSuite) exchange(newTransport func() contract.Transport, endpoint string) {
	// A fresh project per run so leftovers from other runs stay out
	projectID := domain.ProjectID(uuid.NewString())
	var alice, bob Participant

	s.Run("Step 1: both participants join the same project", func() {
		s.Step("join " + projectID.String())
		alice = s.Join(newTransport(), endpoint, projectID)
		bob = s.Join(newTransport(), endpoint, projectID)
		// The relay handles joins asynchronously
		time.Sleep(200 * time.Millisecond)
	})

	s.Run("Step 2: alice's message reaches bob unchanged", func() {
		s.Step("alice sends")
		msg := domain.Message{Text: "hello from e2e", Author: "alice", ProjectID: projectID, Timestamp: "09:30:00"}
		s.Require().NoError(alice.Session.Send(context.Background(), msg))

		s.Require().Eventually(func() bool { return bob.Timeline.Len() == 1 }, 5*time.Second, 20*time.Millisecond)
		s.Require().Equal([]domain.Message{msg}, bob.Timeline.Snapshot())
	})

	s.Run("Step 3: bob leaves cleanly", func() {
		s.Step("bob closes")
		s.Require().NoError(bob.Session.Close())
		s.Require().NoError(bob.Session.Err())
	})
}
