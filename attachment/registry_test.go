package attachment

import (
	"log/slog"
	"os"
	"path/filepath"
	"project-chat/domain/mimetypes"
	"project-chat/errors"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestRegistry_Acquire_DetectsType(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug))
	image := writeFile(t, "photo.bin", pngHeader)
	notes := writeFile(t, "notes.txt", []byte("meeting at ten"))

	imageRef, err := registry.Acquire(image)
	req.NoError(err)
	notesRef, err := registry.Acquire(notes)
	req.NoError(err)

	// Then each file gets its own transient reference
	req.True(IsLocal(imageRef.URL))
	req.NotEqual(imageRef, notesRef)
	req.Equal(2, registry.Len())

	// And the type comes from the content, not the name
	local, err := registry.Resolve(imageRef.URL)
	req.NoError(err)
	req.Equal(image, local.Path)
	req.Equal(mimetypes.ImagePNG, local.MIME)
	req.Equal(mimetypes.KindImage, registry.Kind(imageRef.URL))
	req.Equal(mimetypes.KindLink, registry.Kind(notesRef.URL))
}

func TestRegistry_Acquire_Rejects(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug))

	_, err := registry.Acquire(t.TempDir())
	req.ErrorIs(err, errors.ErrInvalidAttachment)

	_, err = registry.Acquire(filepath.Join(t.TempDir(), "missing.png"))
	req.ErrorIs(err, os.ErrNotExist)
	req.Zero(registry.Len())
}

func TestRegistry_Release(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug))
	first, err := registry.Acquire(writeFile(t, "a.txt", []byte("a")))
	req.NoError(err)
	second, err := registry.Acquire(writeFile(t, "b.txt", []byte("b")))
	req.NoError(err)

	// When one reference is released
	registry.Release(first.URL)
	registry.Release("https://cdn.example.com/remote.png")

	// Then only that one is gone
	_, err = registry.Resolve(first.URL)
	req.ErrorIs(err, errors.ErrUnknownAttachment)
	req.Equal(1, registry.Len())

	// When the chat closes everything left is released
	req.Equal(1, registry.ReleaseAll())
	_, err = registry.Resolve(second.URL)
	req.ErrorIs(err, errors.ErrUnknownAttachment)
}

func TestRegistry_Kind_Remote(t *testing.T) {
	registry := NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug))
	require.Equal(t, mimetypes.KindImage, registry.Kind("https://cdn.example.com/shot.jpg"))
	require.Equal(t, mimetypes.KindLink, registry.Kind("https://cdn.example.com/report.pdf"))
}
