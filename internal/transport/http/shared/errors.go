package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/chat"
	"hireflow/internal/domain/contacts"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/platform/blob"
	"hireflow/internal/transport/http/api"
)

// RespondError maps domain errors onto the JSON error envelope.
func RespondError(w http.ResponseWriter, requestID string, err error) {
	var verr *onboarding.ValidationError
	var upErr *blob.UpstreamError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		FailValidation(w, requestID, []ValidationIssue{{Field: verr.Field, Reason: verr.Reason}})
	case errors.As(err, &upErr):
		details := map[string]any{"detail": upErr.Detail}
		if upErr.Status > 0 {
			details["status"] = upErr.Status
		}
		api.FailWithDetails(w, http.StatusBadGateway, "upstream_storage_error", "file storage failed", details, requestID)
	case errors.As(err, &maxErr):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
	case errors.Is(err, onboarding.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "onboarding record not found", requestID)
	case errors.Is(err, accounts.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
	case errors.Is(err, onboarding.ErrDuplicateRecord):
		api.Fail(w, http.StatusConflict, "duplicate_record", "onboarding record already exists", requestID)
	case errors.Is(err, accounts.ErrEmailExists):
		api.Fail(w, http.StatusConflict, "email_exists", "email already registered", requestID)
	case errors.Is(err, accounts.ErrInvalidRole):
		FailValidation(w, requestID, []ValidationIssue{{Field: "role", Reason: "must be admin, hr or employee"}})
	case errors.Is(err, chat.ErrInvalidParticipants):
		FailValidation(w, requestID, []ValidationIssue{{Field: "receiverId", Reason: "must be another user"}})
	case errors.Is(err, chat.ErrEmptyMessage):
		FailValidation(w, requestID, []ValidationIssue{{Field: "message", Reason: "is required"}})
	case errors.Is(err, contacts.ErrNotPermitted):
		api.Fail(w, http.StatusForbidden, "not_a_contact", "you cannot message this user", requestID)
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
	default:
		slog.Error("request failed", "requestId", requestID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
