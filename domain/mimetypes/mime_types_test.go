package mimetypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"Plain text with charset", "text/plain; charset=utf-8", TextPlain, true},
		{"PDF", "application/pdf", ApplicationPDF, true},
		{"PNG", "image/png", ImagePNG, true},
		{"JPEG", "image/jpeg", ImageJPEG, true},
		{"Mismatch", "text/plain; charset=utf-8", ImagePNG, false},
		{"Invalid MIME", "not a mime", TextPlain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Matches(tt.detected, tt.expected)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want MIME
	}{
		{"Remote png", "https://cdn.example.com/files/shot.png", ImagePNG},
		{"Upper case jpg with query", "https://cdn.example.com/a/B.JPG?size=large", ImageJPEG},
		{"Plain path gif", "uploads/anim.gif", ImageGIF},
		{"No extension", "blob:6f1c2a9e-1d0b-4c8e-9a57-0b7f4a0e2d11", Unknown},
		{"Unknown extension", "report.zzzunknown", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FromURL(tt.url))
		})
	}
}

func TestParse(t *testing.T) {
	req := require.New(t)
	req.Equal(TextPlain, Parse("text/plain; charset=utf-8"))
	req.Equal(ImagePNG, Parse("image/png"))
	req.Equal(Unknown, Parse(""))
}

func TestPreviewKind(t *testing.T) {
	req := require.New(t)
	req.Equal(KindImage, PreviewKind(ImagePNG))
	req.Equal(KindImage, PreviewKind(ImageJPEG))
	req.Equal(KindLink, PreviewKind(ApplicationPDF))
	req.Equal(KindLink, PreviewKind(Unknown))
}
