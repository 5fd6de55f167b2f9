package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"project-chat/contract"
	"project-chat/domain"
	"project-chat/projection"
	"project-chat/session"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const joinTimeout = 5 * time.Second

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Step prints a colorized header for a scenario step
func (s *BaseRelaySuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Participant is one client session and the log it feeds.
type Participant struct {
	Session  *session.Session
	Timeline *projection.Timeline
}

// Join opens a session on the relay and waits until join_project went out.
// The session is closed at the end of the test.
func (s *BaseRelaySuite) Join(transport contract.Transport, endpoint string, projectID domain.ProjectID) Participant {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	timeline := projection.NewTimeline(projectID)
	sess := session.New(log, transport, session.Config{EndpointAddress: endpoint}, projectID)
	s.Require().NoError(sess.OnReceive(timeline.Append))
	s.Require().NoError(sess.Open(context.Background()))
	s.T().Cleanup(func() { _ = sess.Close() })

	select {
	case <-sess.Joined():
	case <-sess.Done():
		s.Require().FailNow("session closed before joining", "error: %v", sess.Err())
	case <-time.After(joinTimeout):
		s.Require().FailNow("session did not join", endpoint)
	}
	return Participant{Session: sess, Timeline: timeline}
}
