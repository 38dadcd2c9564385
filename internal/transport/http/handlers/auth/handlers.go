package authhandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

type Handler struct {
	Auth     *auth.Service
	Accounts *accounts.Service
}

func NewHandler(authSvc *auth.Service, accountsSvc *accounts.Service) *Handler {
	return &Handler{Auth: authSvc, Accounts: accountsSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	token, user, err := h.Auth.Login(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"token": token, "user": user}, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	acc, err := h.Accounts.Get(r.Context(), user.UserID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, acc, reqID)
}
