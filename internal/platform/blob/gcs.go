package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	EmulatorHost    string
	PublicBaseURL   string
}

// GCS uploads objects to a Cloud Storage bucket.
type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCS(ctx context.Context, cfg GCSConfig) (*GCS, error) {
	var opts []option.ClientOption
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		opts = append(opts, option.WithoutAuthentication())
		if baseURL == "" {
			baseURL = host
		}
	} else {
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com"
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (g *GCS) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", upstream(err)
	}
	if err := w.Close(); err != nil {
		return "", upstream(err)
	}
	return g.PublicURL(name), nil
}

func (g *GCS) PublicURL(name string) string {
	return g.baseURL + "/" + g.bucket + "/" + (&url.URL{Path: name}).EscapedPath()
}

func (g *GCS) Close() error {
	return g.client.Close()
}

func upstream(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Body
		}
		return &UpstreamError{Status: apiErr.Code, Detail: detail, Err: err}
	}
	return &UpstreamError{Detail: err.Error(), Err: err}
}
