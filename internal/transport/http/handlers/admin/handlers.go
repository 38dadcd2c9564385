package adminhandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/transport/http/api"
	hrhandler "hireflow/internal/transport/http/handlers/hr"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

type Handler struct {
	Accounts   *accounts.Service
	Onboarding *onboarding.Service
}

func NewHandler(accountsSvc *accounts.Service, onboardingSvc *onboarding.Service) *Handler {
	return &Handler{Accounts: accountsSvc, Onboarding: onboardingSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	users, err := h.Accounts.ListAll(r.Context())
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	views, err := hrhandler.WithProgress(r, h.Onboarding, users)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"users": views}, reqID)
}

type createUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	Role            string `json:"role"`
	ExperienceLevel string `json:"experienceLevel"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	role := strings.ToLower(strings.TrimSpace(payload.Role))
	if role == "" {
		role = auth.RoleEmployee
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	v.Enum("role", role, auth.Roles, "must be admin, hr or employee")
	if v.Reject(w, reqID) {
		return
	}

	var provision accounts.Provision
	if role == auth.RoleEmployee {
		provision = hrhandler.WithChecklist(h.Onboarding, onboarding.ParseLevel(payload.ExperienceLevel))
	}
	created, password, err := h.Accounts.Create(r.Context(), user.UserID, role, accounts.NewEmployee{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	}, provision)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Created(w, map[string]any{"user": created, "tempPassword": password}, reqID)
}
