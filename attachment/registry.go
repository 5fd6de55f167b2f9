// Package attachment scopes the lifetime of local attachment references.
// A reference is acquired when the user picks a file and released when it is
// replaced before sending or when the chat closes.
package attachment

import (
	"fmt"
	"log/slog"
	"os"
	"project-chat/domain"
	"project-chat/domain/mimetypes"
	"project-chat/errors"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const scheme = "blob:"

type Local struct {
	Path string
	MIME mimetypes.MIME
	Size int64
}

type Registry struct {
	mu      sync.Mutex
	log     *slog.Logger
	handles map[string]Local
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log, handles: make(map[string]Local)}
}

// Acquire registers a local file and returns its transient reference.
func (r *Registry) Acquire(path string) (domain.AttachmentRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.AttachmentRef{}, fmt.Errorf("attachment %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return domain.AttachmentRef{}, fmt.Errorf("%w: %s", errors.ErrInvalidAttachment, path)
	}
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return domain.AttachmentRef{}, fmt.Errorf("detecting type of %q: %w", path, err)
	}

	mt := mimetypes.Parse(detected.String())
	url := scheme + uuid.NewString()

	r.mu.Lock()
	r.handles[url] = Local{Path: path, MIME: mt, Size: info.Size()}
	r.mu.Unlock()

	r.log.Debug("Attachment acquired", "url", url, "mime", string(mt), "size", info.Size())
	return domain.AttachmentRef{URL: url}, nil
}

// Resolve returns the local file behind a live reference.
func (r *Registry) Resolve(url string) (Local, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	local, ok := r.handles[url]
	if !ok {
		return Local{}, fmt.Errorf("%w: %s", errors.ErrUnknownAttachment, url)
	}
	return local, nil
}

// Release ends the lifetime of a reference. Remote URLs and unknown
// references are ignored.
func (r *Registry) Release(url string) {
	if !IsLocal(url) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[url]; ok {
		delete(r.handles, url)
		r.log.Debug("Attachment released", "url", url)
	}
}

func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.handles)
	r.handles = make(map[string]Local)
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Kind picks how to preview an attachment, local or remote.
func (r *Registry) Kind(url string) mimetypes.Kind {
	if local, err := r.Resolve(url); err == nil {
		return mimetypes.PreviewKind(local.MIME)
	}
	return mimetypes.PreviewKind(mimetypes.FromURL(url))
}

func IsLocal(url string) bool {
	return strings.HasPrefix(url, scheme)
}
