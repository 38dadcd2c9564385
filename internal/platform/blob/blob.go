// Package blob stores uploaded onboarding files and hands back public URLs.
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type Gateway interface {
	// Upload stores body under name and returns the public URL.
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// UpstreamError reports a failed call to the blob backend.
type UpstreamError struct {
	Status int
	Detail string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("blob upload failed (%d): %s", e.Status, e.Detail)
	}
	return "blob upload failed: " + e.Detail
}

func (e *UpstreamError) Unwrap() error { return e.Err }

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectName builds a unique object key under folder that keeps the base name
// and extension of filename.
func ObjectName(folder, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "file"
	}
	name := uuid.NewString() + "-" + base
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}
