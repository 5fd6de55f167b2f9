package internal

import (
	"embed"
	"html/template"
	"net/http"
	"project-chat/runtime"
	"time"
)

//go:embed inspect.html
var templatesFS embed.FS

var inspectTemplate = template.Must(template.ParseFS(templatesFS, "inspect.html"))

type ProjectsProvider func() []runtime.ProjectMembers
type StatsProvider func() map[string]any

type PageData struct {
	GeneratedAt string
	Projects    []runtime.ProjectMembers
	Stats       map[string]any
}

// NewInspectHandler renders the live project memberships of a relay.
func NewInspectHandler(projects ProjectsProvider, stats StatsProvider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := PageData{
			GeneratedAt: time.Now().Format(time.RFC822),
			Projects:    projects(),
			Stats:       make(map[string]any),
		}
		if stats != nil {
			data.Stats = stats()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = inspectTemplate.Execute(w, data)
	})
}
