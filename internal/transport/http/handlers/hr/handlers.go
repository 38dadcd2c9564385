package hrhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/chat"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

const DefaultReminder = "Please complete your onboarding tasks.\nThis is a reminder from HR."

type Handler struct {
	Accounts      *accounts.Service
	Onboarding    *onboarding.Service
	Chat          *chat.Service
	Notifications *notifications.Service
}

func NewHandler(accountsSvc *accounts.Service, onboardingSvc *onboarding.Service, chatSvc *chat.Service, notificationsSvc *notifications.Service) *Handler {
	return &Handler{Accounts: accountsSvc, Onboarding: onboardingSvc, Chat: chatSvc, Notifications: notificationsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/hr/employees", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleHR, auth.RoleAdmin))
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{employeeID}/status", h.handleStatus)
		r.Post("/{employeeID}/remind", h.handleRemind)
		r.Get("/{employeeID}/report.pdf", h.handleReport)
	})
}

type createEmployeeRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ExperienceLevel string `json:"experienceLevel"`
}

// WithChecklist initializes the employee's checklist in the transaction that
// creates the account, so neither exists without the other.
func WithChecklist(svc *onboarding.Service, level onboarding.ExperienceLevel) accounts.Provision {
	return func(ctx context.Context, tx pgx.Tx, acc accounts.Account) error {
		_, err := svc.InitializeTx(ctx, tx, acc.ID, level)
		return err
	}
}

// EmployeeView is an account together with its onboarding progress.
type EmployeeView struct {
	accounts.Account
	Onboarding *onboarding.Summary `json:"onboarding,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("email", payload.Email, "is required")
	v.Email("email", payload.Email)
	if v.Reject(w, reqID) {
		return
	}

	level := onboarding.ParseLevel(payload.ExperienceLevel)
	employee, password, err := h.Accounts.CreateEmployee(r.Context(), user.UserID, accounts.NewEmployee{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	}, WithChecklist(h.Onboarding, level))
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}

	if h.Notifications != nil {
		body := fmt.Sprintf("Employee %s created", employee.Name)
		if err := h.Notifications.Create(r.Context(), user.UserID, notifications.TypeEmployeeAdded, "Employee added", body); err != nil {
			slog.Warn("employee added notification failed", "err", err)
		}
	}

	api.Created(w, map[string]any{
		"employee":     EmployeeView{Account: employee, Onboarding: &onboarding.Summary{ExperienceLevel: level}},
		"tempPassword": password,
	}, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employees, err := h.Accounts.ListEmployeesOf(r.Context(), user.UserID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	views, err := WithProgress(r, h.Onboarding, employees)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"employees": views}, reqID)
}

// WithProgress attaches onboarding summaries to employee accounts. Accounts
// without a record report 0% as a fresher; non-employees carry no summary.
func WithProgress(r *http.Request, svc *onboarding.Service, list []accounts.Account) ([]EmployeeView, error) {
	ids := make([]string, 0, len(list))
	for _, acc := range list {
		if acc.Role == auth.RoleEmployee {
			ids = append(ids, acc.ID)
		}
	}
	summaries := map[string]onboarding.Summary{}
	if len(ids) > 0 {
		var err error
		summaries, err = svc.Summaries(r.Context(), ids)
		if err != nil {
			return nil, err
		}
	}

	out := make([]EmployeeView, 0, len(list))
	for _, acc := range list {
		view := EmployeeView{Account: acc}
		if acc.Role == auth.RoleEmployee {
			summary, ok := summaries[acc.ID]
			if !ok {
				summary = onboarding.Summary{ExperienceLevel: onboarding.LevelFresher}
			}
			view.Onboarding = &summary
		}
		out = append(out, view)
	}
	return out, nil
}

// authorize resolves the employee and rejects callers that may not manage them.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (accounts.Account, bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	employee, err := h.Accounts.Get(r.Context(), employeeID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return accounts.Account{}, false
	}
	if employee.Role != auth.RoleEmployee {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return accounts.Account{}, false
	}
	if user.RoleName != auth.RoleAdmin && employee.CreatedBy != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "employee belongs to another hr", reqID)
		return accounts.Account{}, false
	}
	return employee, true
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employee, ok := h.authorize(w, r)
	if !ok {
		return
	}
	rec, err := h.Onboarding.GetStatus(r.Context(), employee.ID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	missing := onboarding.Missing(rec)
	if missing == nil {
		missing = []onboarding.RequiredDoc{}
	}
	api.Success(w, map[string]any{"docs": rec, "missing": missing}, reqID)
}

type remindRequest struct {
	Message string `json:"message"`
}

func (h *Handler) handleRemind(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employee, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var payload remindRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = DefaultReminder
	}

	if err := h.Notifications.Create(r.Context(), employee.ID, notifications.TypeHRReminder, "Reminder from HR", message); err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	msg, err := h.Chat.SendAndDeliver(r.Context(), user.UserID, employee.ID, message)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"message": "Reminder sent", "chat": msg}, reqID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employee, ok := h.authorize(w, r)
	if !ok {
		return
	}
	rec, err := h.Onboarding.GetStatus(r.Context(), employee.ID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	pdf, err := onboarding.RenderReport(onboarding.ReportHeader{Name: employee.Name, Email: employee.Email}, rec)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "onboarding-"+employee.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
