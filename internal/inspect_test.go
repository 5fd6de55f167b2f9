package internal

import (
	"net/http"
	"net/http/httptest"
	"project-chat/runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInspectHandler(t *testing.T) {
	req := require.New(t)
	projects := func() []runtime.ProjectMembers {
		return []runtime.ProjectMembers{{ProjectID: "p1", Participants: []string{"alice-id", "bob-id"}}}
	}
	stats := func() map[string]any { return map[string]any{"exclude_sender": true} }

	rec := httptest.NewRecorder()
	NewInspectHandler(projects, stats).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	req.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	req.Contains(body, "<td>p1</td><td>2</td>")
	req.Contains(body, "alice-id bob-id")
	req.Contains(body, "exclude_sender: true")
}

func TestInspectHandler_NoProject(t *testing.T) {
	rec := httptest.NewRecorder()
	NewInspectHandler(func() []runtime.ProjectMembers { return nil }, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	require.Contains(t, rec.Body.String(), "No project joined")
}
