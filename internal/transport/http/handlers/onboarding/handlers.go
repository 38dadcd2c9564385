package onboardinghandler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

// UploadRecorder counts upload outcomes.
type UploadRecorder interface {
	RecordUpload(ok bool)
}

type Handler struct {
	Service  *onboarding.Service
	Accounts *accounts.Service
	Metrics  UploadRecorder
	// MaxMemory is how much of a multipart body is buffered before spilling
	// to temporary files.
	MaxMemory int64
}

func NewHandler(service *onboarding.Service, accountsSvc *accounts.Service, metrics UploadRecorder) *Handler {
	return &Handler{Service: service, Accounts: accountsSvc, Metrics: metrics, MaxMemory: 8 << 20}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleEmployee)).Post("/upload", h.handleUpload)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Post("/upload-file", h.handleUpload)
		r.Get("/status", h.handleOwnStatus)
		r.Get("/status/{employeeID}", h.handleStatus)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var (
		rec onboarding.Record
		err error
	)
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/") {
		rec, err = h.uploadMultipart(r, user.UserID)
	} else {
		rec, err = h.uploadJSON(r, user.UserID)
	}
	if h.Metrics != nil {
		h.Metrics.RecordUpload(err == nil)
	}
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"docs": rec}, reqID)
}

func (h *Handler) uploadMultipart(r *http.Request, employeeID string) (onboarding.Record, error) {
	if err := r.ParseMultipartForm(h.MaxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return onboarding.Record{}, err
		}
		return onboarding.Record{}, &onboarding.ValidationError{Field: "files", Reason: "must be multipart form data"}
	}
	defer r.MultipartForm.RemoveAll()

	fields := make([]string, 0, len(r.MultipartForm.File))
	for field := range r.MultipartForm.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []onboarding.FilePart
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, field := range fields {
		for _, header := range r.MultipartForm.File[field] {
			f, err := header.Open()
			if err != nil {
				return onboarding.Record{}, err
			}
			opened = append(opened, f)
			parts = append(parts, onboarding.FilePart{
				Field:       field,
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        f,
			})
		}
	}
	return h.Service.UploadFiles(r.Context(), employeeID, parts)
}

func (h *Handler) uploadJSON(r *http.Request, employeeID string) (onboarding.Record, error) {
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return onboarding.Record{}, err
		}
		if errors.Is(err, io.EOF) {
			return onboarding.Record{}, &onboarding.ValidationError{Reason: "no documents supplied"}
		}
		return onboarding.Record{}, &onboarding.ValidationError{Field: "body", Reason: "must be a JSON object"}
	}

	values := map[string]string{}
	var others []onboarding.OtherDoc
	for key, raw := range payload {
		if key == "otherDocs" {
			if err := json.Unmarshal(raw, &others); err != nil {
				return onboarding.Record{}, &onboarding.ValidationError{Field: "otherDocs", Reason: "must be a list of {name, fileURL}"}
			}
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return onboarding.Record{}, &onboarding.ValidationError{Field: key, Reason: "must be a string"}
		}
		values[key] = value
	}
	return h.Service.UploadValues(r.Context(), employeeID, values, others)
}

func (h *Handler) handleOwnStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	h.writeStatus(w, r, user.UserID)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	allowed, err := CanView(r, h.Accounts, user, employeeID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this employee", reqID)
		return
	}
	h.writeStatus(w, r, employeeID)
}

func (h *Handler) writeStatus(w http.ResponseWriter, r *http.Request, employeeID string) {
	reqID := middleware.GetRequestID(r.Context())
	rec, err := h.Service.GetStatus(r.Context(), employeeID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{
		"docs":    rec,
		"missing": nonNil(onboarding.Missing(rec)),
	}, reqID)
}

// CanView reports whether user may read the onboarding record of employeeID:
// the employee, the HR who provisioned them, or an admin.
func CanView(r *http.Request, accountsSvc *accounts.Service, user auth.UserContext, employeeID string) (bool, error) {
	switch {
	case user.UserID == employeeID:
		return true, nil
	case user.RoleName == auth.RoleAdmin:
		return true, nil
	case user.RoleName == auth.RoleHR:
		acc, err := accountsSvc.Get(r.Context(), employeeID)
		if errors.Is(err, accounts.ErrNotFound) {
			return false, onboarding.ErrNotFound
		}
		if err != nil {
			return false, err
		}
		return acc.CreatedBy == user.UserID, nil
	default:
		return false, nil
	}
}

func nonNil(docs []onboarding.RequiredDoc) []onboarding.RequiredDoc {
	if docs == nil {
		return []onboarding.RequiredDoc{}
	}
	return docs
}
