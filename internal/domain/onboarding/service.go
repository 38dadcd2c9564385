package onboarding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"hireflow/internal/platform/blob"
)

const (
	NotificationType  = "documents_uploaded"
	NotificationTitle = "Documents uploaded"
)

var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".pdf":  "application/pdf",
}

// allowedTypes maps accepted data URI media types to the stored extension.
var allowedTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"application/pdf": ".pdf",
}

const fileTypeReason = "must be a png, jpg, jpeg or pdf file"

// Notifier records a notification for a user.
type Notifier interface {
	Create(ctx context.Context, userID, ntype, title, body string) error
}

type Service struct {
	store          StoreAPI
	blobs          blob.Gateway
	notifier       Notifier
	folder         string
	maxUploadBytes int64
	now            func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithFolder(folder string) Option {
	return func(s *Service) { s.folder = folder }
}

func WithMaxUploadBytes(limit int64) Option {
	return func(s *Service) { s.maxUploadBytes = limit }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store StoreAPI, blobs blob.Gateway, opts ...Option) *Service {
	s := &Service{
		store:          store,
		blobs:          blobs,
		folder:         "hr_onboarding",
		maxUploadBytes: 5 << 20,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the checklist for a newly provisioned employee.
func (s *Service) Initialize(ctx context.Context, employeeID string, level ExperienceLevel) (Record, error) {
	rec, err := initialRecord(employeeID, level)
	if err != nil {
		return Record{}, err
	}
	return s.store.Create(ctx, rec)
}

// InitializeTx creates the checklist inside tx, the transaction that inserts
// the employee's account.
func (s *Service) InitializeTx(ctx context.Context, tx pgx.Tx, employeeID string, level ExperienceLevel) (Record, error) {
	rec, err := initialRecord(employeeID, level)
	if err != nil {
		return Record{}, err
	}
	return s.store.CreateTx(ctx, tx, rec)
}

func initialRecord(employeeID string, level ExperienceLevel) (Record, error) {
	if strings.TrimSpace(employeeID) == "" {
		return Record{}, &ValidationError{Field: "employeeId", Reason: "is required"}
	}
	rec := NewRecord(employeeID, level)
	rec.CompletionPercent = CompletionPercent(rec)
	return rec, nil
}

func (s *Service) GetStatus(ctx context.Context, employeeID string) (Record, error) {
	return s.store.Get(ctx, employeeID)
}

func (s *Service) Summaries(ctx context.Context, employeeIDs []string) (map[string]Summary, error) {
	return s.store.Summaries(ctx, employeeIDs)
}

// MergeUploads applies patch atomically, creating a LazyInitLevel record when
// the employee has none yet.
func (s *Service) MergeUploads(ctx context.Context, employeeID string, patch Patch) (Record, error) {
	patch = normalizePatch(patch)
	if patch.Empty() {
		return Record{}, &ValidationError{Reason: "no documents supplied"}
	}
	now := s.now()
	rec, err := s.store.Mutate(ctx, employeeID,
		func() Record {
			fresh := NewRecord(employeeID, LazyInitLevel)
			fresh.CompletionPercent = CompletionPercent(fresh)
			return fresh
		},
		func(r *Record) error {
			Apply(r, patch, now)
			return nil
		})
	if err != nil {
		return Record{}, err
	}
	s.notify(ctx, employeeID, patch)
	return rec, nil
}

// UploadFiles stores every part in the blob backend and merges the resulting
// URLs. Nothing is persisted unless all uploads succeed.
func (s *Service) UploadFiles(ctx context.Context, employeeID string, parts []FilePart) (Record, error) {
	if len(parts) == 0 {
		return Record{}, &ValidationError{Reason: "no files supplied"}
	}
	for _, part := range parts {
		if err := s.validatePart(part); err != nil {
			return Record{}, err
		}
	}

	urls := make([]string, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		g.Go(func() error {
			url, err := s.blobs.Upload(gctx, blob.ObjectName(s.folder, part.Filename), contentTypeFor(part), part.Body)
			if err != nil {
				return asUpstream(err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Record{}, err
	}

	var patch Patch
	for i, part := range parts {
		patch.Entries = append(patch.Entries, Entry{Key: part.Field, URL: urls[i]})
		if part.Field == OtherKey {
			patch.OtherDocs = append(patch.OtherDocs, OtherDoc{Name: part.Filename, FileURL: urls[i]})
		}
	}
	return s.MergeUploads(ctx, employeeID, patch)
}

// UploadValues merges key/url pairs sent as JSON. Values given as data URIs
// pass the same type and size filter as multipart files and are stored in the
// blob backend first.
func (s *Service) UploadValues(ctx context.Context, employeeID string, values map[string]string, others []OtherDoc) (Record, error) {
	var patch Patch
	for key, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if blob.IsDataURI(value) {
			url, err := s.storeDataURI(ctx, key, key, value)
			if err != nil {
				return Record{}, err
			}
			value = url
		}
		patch.Entries = append(patch.Entries, Entry{Key: key, URL: value})
	}
	for _, doc := range others {
		if blob.IsDataURI(doc.FileURL) {
			url, err := s.storeDataURI(ctx, "otherDocs", OtherKey, doc.FileURL)
			if err != nil {
				return Record{}, err
			}
			doc.FileURL = url
		}
		patch.OtherDocs = append(patch.OtherDocs, doc)
	}
	return s.MergeUploads(ctx, employeeID, patch)
}

func (s *Service) storeDataURI(ctx context.Context, field, key, value string) (string, error) {
	contentType, data, err := blob.ParseDataURI(value)
	if err != nil {
		return "", &ValidationError{Field: field, Reason: "is not a valid data uri"}
	}
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", &ValidationError{Field: field, Reason: fileTypeReason}
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("exceeds %d bytes", s.maxUploadBytes)}
	}
	url, err := s.blobs.Upload(ctx, blob.ObjectName(s.folder, key+ext), strings.ToLower(contentType), bytes.NewReader(data))
	if err != nil {
		return "", asUpstream(err)
	}
	return url, nil
}

func (s *Service) validatePart(part FilePart) error {
	if strings.TrimSpace(part.Field) == "" {
		return &ValidationError{Field: "file", Reason: "has no field name"}
	}
	ext := strings.ToLower(filepath.Ext(part.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return &ValidationError{Field: part.Field, Reason: fileTypeReason}
	}
	if s.maxUploadBytes > 0 && part.Size > s.maxUploadBytes {
		return &ValidationError{Field: part.Field, Reason: fmt.Sprintf("exceeds %d bytes", s.maxUploadBytes)}
	}
	return nil
}

func contentTypeFor(part FilePart) string {
	if ct := allowedExtensions[strings.ToLower(filepath.Ext(part.Filename))]; ct != "" {
		return ct
	}
	return part.ContentType
}

func asUpstream(err error) error {
	var up *blob.UpstreamError
	if errors.As(err, &up) {
		return up
	}
	return &blob.UpstreamError{Detail: err.Error(), Err: err}
}

func (s *Service) notify(ctx context.Context, employeeID string, patch Patch) {
	if s.notifier == nil {
		return
	}
	keys := make([]string, 0, len(patch.Entries)+1)
	for _, entry := range patch.Entries {
		keys = append(keys, entry.Key)
	}
	if len(patch.OtherDocs) > 0 && !slices.Contains(keys, OtherKey) {
		keys = append(keys, OtherKey)
	}
	body := "Uploaded: " + strings.Join(keys, ", ")
	if err := s.notifier.Create(ctx, employeeID, NotificationType, NotificationTitle, body); err != nil {
		slog.WarnContext(ctx, "upload notification failed", "employee_id", employeeID, "err", err)
	}
}
