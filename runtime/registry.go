package runtime

import (
	"project-chat/contract"
	"project-chat/domain"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

type Set map[string]struct{}

// Registry tracks which relay participant listens to which project.
// A participant belongs to one project at a time.
type Registry struct {
	mu             sync.RWMutex
	Sessions       map[string]contract.EventSink // participant -> sink
	Memberships    map[string]domain.ProjectID   // participant -> project
	ProjectMembers map[domain.ProjectID]Set      // project -> participants
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:       make(map[string]contract.EventSink),
		Memberships:    make(map[string]domain.ProjectID),
		ProjectMembers: make(map[domain.ProjectID]Set),
	}
}

// GetSinksForProject returns the sinks of every participant of the project,
// or nil when nobody joined it.
func (r *Registry) GetSinksForProject(projectID domain.ProjectID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.ProjectMembers[projectID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for participantID := range members {
		if sink, exists := r.Sessions[participantID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers the participant's sink in a project. Joining another
// project moves the participant there.
func (r *Registry) Subscribe(participantID string, projectID domain.ProjectID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leave(participantID)
	r.Sessions[participantID] = sink
	r.Memberships[participantID] = projectID

	if _, ok := r.ProjectMembers[projectID]; !ok {
		r.ProjectMembers[projectID] = make(Set)
	}
	r.ProjectMembers[projectID][participantID] = struct{}{}
}

// Unsubscribe forgets the participant. Empty projects are dropped so the
// maps do not grow forever.
func (r *Registry) Unsubscribe(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leave(participantID)
}

func (r *Registry) leave(participantID string) {
	delete(r.Sessions, participantID)
	projectID, ok := r.Memberships[participantID]
	if !ok {
		return
	}
	delete(r.Memberships, participantID)
	if members, ok := r.ProjectMembers[projectID]; ok {
		delete(members, participantID)
		if len(members) == 0 {
			delete(r.ProjectMembers, projectID)
		}
	}
}

// ProjectMembers is a point-in-time view of one project.
type ProjectMembers struct {
	ProjectID    domain.ProjectID
	Participants []string
}

// Projects lists every project with at least one member, sorted by id.
func (r *Registry) Projects() []ProjectMembers {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]ProjectMembers, 0, len(r.ProjectMembers))
	for projectID, members := range r.ProjectMembers {
		participants := lo.Keys(members)
		slices.Sort(participants)
		projects = append(projects, ProjectMembers{ProjectID: projectID, Participants: participants})
	}
	slices.SortFunc(projects, func(a, b ProjectMembers) int {
		return strings.Compare(string(a.ProjectID), string(b.ProjectID))
	})
	return projects
}
