package chathandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"hireflow/internal/domain/chat"
	"hireflow/internal/domain/contacts"
	"hireflow/internal/realtime"
	"hireflow/internal/transport/http/api"
	"hireflow/internal/transport/http/middleware"
	"hireflow/internal/transport/http/shared"
)

// MessageRecorder counts chat messages accepted for delivery.
type MessageRecorder interface {
	RecordChatMessage()
}

type Handler struct {
	Chat     *chat.Service
	Contacts *contacts.Resolver
	Hub      *realtime.Hub
	Upgrader *websocket.Upgrader
	Metrics  MessageRecorder
	// EnforceContacts restricts sends to pairs the resolver permits.
	EnforceContacts bool
}

func NewHandler(chatSvc *chat.Service, resolver *contacts.Resolver, hub *realtime.Hub, upgrader *websocket.Upgrader, metrics MessageRecorder, enforce bool) *Handler {
	return &Handler{Chat: chatSvc, Contacts: resolver, Hub: hub, Upgrader: upgrader, Metrics: metrics, EnforceContacts: enforce}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/send", h.handleSend)
		r.Get("/", h.handleHistory)
		r.Get("/contacts", h.handleContacts)
		r.Post("/mark-read", h.handleMarkRead)
		r.Get("/unread-counts", h.handleUnreadCounts)
	})
	r.Get("/ws", h.handleWebsocket)
}

// send applies the contact policy, persists and fans out one message.
func (h *Handler) send(ctx context.Context, senderID, receiverID, message string) (chat.Message, error) {
	if strings.TrimSpace(message) == "" {
		return chat.Message{}, chat.ErrEmptyMessage
	}
	if h.EnforceContacts && h.Contacts != nil {
		if err := h.Contacts.Check(ctx, senderID, receiverID); err != nil {
			return chat.Message{}, err
		}
	}
	msg, err := h.Chat.SendAndDeliver(ctx, senderID, receiverID, message)
	if err != nil {
		return chat.Message{}, err
	}
	if h.Metrics != nil {
		h.Metrics.RecordChatMessage()
	}
	return msg, nil
}

type sendRequest struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload sendRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("receiverId", payload.ReceiverID, "is required")
	v.UUID("receiverId", payload.ReceiverID)
	v.Required("message", payload.Message, "is required")
	if v.Reject(w, reqID) {
		return
	}

	msg, err := h.send(r.Context(), user.UserID, strings.TrimSpace(payload.ReceiverID), payload.Message)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Created(w, map[string]any{"chat": msg}, reqID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	with := strings.TrimSpace(r.URL.Query().Get("withUserId"))

	v := shared.NewValidator()
	v.Required("withUserId", with, "is required")
	v.UUID("withUserId", with)
	if v.Reject(w, reqID) {
		return
	}

	page := shared.ParseOptionalPagination(r, 500)
	msgs, err := h.Chat.History(r.Context(), user.UserID, with, chat.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"msgs": msgs}, reqID)
}

func (h *Handler) handleContacts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	list, err := h.Contacts.Contacts(r.Context(), user.UserID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"contacts": list}, reqID)
}

type markReadRequest struct {
	WithUserID string `json:"withUserId"`
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("withUserId", payload.WithUserID, "is required")
	v.UUID("withUserId", payload.WithUserID)
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Chat.MarkRead(r.Context(), user.UserID, strings.TrimSpace(payload.WithUserID)); err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]bool{"success": true}, reqID)
}

func (h *Handler) handleUnreadCounts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	counts, err := h.Chat.UnreadCounts(r.Context(), user.UserID)
	if err != nil {
		shared.RespondError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{"counts": counts}, reqID)
}

func (h *Handler) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	realtime.Serve(h.Hub, h.Upgrader, w, r, user.UserID, func(ctx context.Context, senderID, receiverID, message string) error {
		_, err := h.send(ctx, senderID, receiverID, message)
		return err
	})
}
