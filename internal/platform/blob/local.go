package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes objects below a directory that the HTTP server exposes at
// /files/.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &UpstreamError{Detail: err.Error(), Err: err}
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Upload(ctx context.Context, name, _ string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(l.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", &UpstreamError{Detail: err.Error(), Err: err}
	}
	f, err := os.Create(target)
	if err != nil {
		return "", &UpstreamError{Detail: err.Error(), Err: err}
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", &UpstreamError{Detail: err.Error(), Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &UpstreamError{Detail: err.Error(), Err: err}
	}
	return l.BaseURL + "/files/" + name, nil
}
