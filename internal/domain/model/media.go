package model

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

// FileNameFromURL derives the storage object name (basename) of a public media URL.
func FileNameFromURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	name := path.Base(u)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// IsVideoURL reports whether a media URL points at a video.
func IsVideoURL(u string) bool {
	l := strings.ToLower(u)
	return strings.Contains(l, ".mp4") || strings.Contains(l, ".webm") || strings.Contains(l, ".ogg")
}

// IsImageContentType reports whether a MIME type should be compressed before upload.
func IsImageContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(ct), "image/")
}

// UploadName builds the unique object name <unix-millis>-<original-name>.
func UploadName(now time.Time, original string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), sanitizeFileName(original))
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// SignedUpload is a time-limited target for a direct upload of one object.
type SignedUpload struct {
	SignedURL string `json:"signedUrl"`
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
}

// UploadFile is one input file for the upload workflow.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadedMedia describes a file stored and publicly reachable.
type UploadedMedia struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	ContentType  string `json:"content_type"`
	Size         int    `json:"size"`
	OriginalSize int    `json:"original_size"`
}

// FailedUpload reports a file that could not be stored.
type FailedUpload struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResult is the outcome of a batch; partial success is expected.
type UploadResult struct {
	Uploaded []UploadedMedia `json:"uploaded"`
	Failed   []FailedUpload  `json:"failed"`
}
