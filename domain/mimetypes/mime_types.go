package mimetypes

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

type MIME string

const (
	Unknown        MIME = "unknown"
	TextPlain      MIME = "text/plain"
	ApplicationPDF MIME = "application/pdf"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
)

// Kind tells a presentation layer how to preview an attachment.
type Kind string

const (
	KindImage Kind = "image"
	KindLink  Kind = "link"
)

var previewable = []MIME{ImagePNG, ImageJPEG, ImageGIF}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// Parse drops parameters such as charset from a detected type.
func Parse(detected string) MIME {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown
	}
	return MIME(mt)
}

// FromURL guesses the type of an attachment from its extension.
// Query strings and fragments are ignored.
func FromURL(raw string) MIME {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return Unknown
	}
	return Parse(mime.TypeByExtension(ext))
}

func PreviewKind(detected MIME) Kind {
	for _, m := range previewable {
		if _, ok := Matches(string(detected), m); ok {
			return KindImage
		}
	}
	return KindLink
}
