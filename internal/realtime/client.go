package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

const (
	EventJoin      = "join"
	EventChat      = "chat-message"
	EventChatError = "chat-error"
)

// ChatFunc persists and fans out a message sent over a live connection.
type ChatFunc func(ctx context.Context, senderID, receiverID, message string) error

type joinData struct {
	UserID string `json:"userId"`
}

type chatData struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

type chatErrorData struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// Client is one websocket session owned by an authenticated user.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	userID  string
	onChat  ChatFunc
	channel string
	closed  bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, onChat ChatFunc) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer), userID: userID, onChat: onChat}
}

// enqueue drops the frame when the client is not keeping up. Callers hold the
// hub lock.
func (c *Client) enqueue(raw []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- raw:
	default:
		slog.Debug("live session buffer full, dropping frame", "user_id", c.userID)
	}
}

func (c *Client) reply(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	raw, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	c.enqueue(raw)
	c.hub.mu.RUnlock()
}

// handle processes one inbound frame.
func (c *Client) handle(ctx context.Context, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		slog.Debug("live frame decode failed", "user_id", c.userID, "err", err)
		return
	}
	switch frame.Event {
	case EventJoin:
		var in joinData
		if err := json.Unmarshal(frame.Data, &in); err != nil {
			return
		}
		if in.UserID != c.userID {
			slog.Warn("live join for another user ignored", "user_id", c.userID, "requested", in.UserID)
			return
		}
		c.hub.Join(c, c.userID)
	case EventChat:
		var in chatData
		if err := json.Unmarshal(frame.Data, &in); err != nil {
			c.reply(EventChatError, chatErrorData{Error: "malformed chat message"})
			return
		}
		if in.SenderID != "" && in.SenderID != c.userID {
			c.reply(EventChatError, chatErrorData{ReceiverID: in.ReceiverID, Message: in.Message, Error: "sender does not match session"})
			return
		}
		if err := c.onChat(ctx, c.userID, in.ReceiverID, in.Message); err != nil {
			c.reply(EventChatError, chatErrorData{ReceiverID: in.ReceiverID, Message: in.Message, Error: err.Error()})
		}
	default:
		slog.Debug("live frame ignored", "event", frame.Event)
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("live session read failed", "user_id", c.userID, "err", err)
			}
			return
		}
		c.handle(ctx, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NewUpgrader accepts requests without an Origin header and those whose
// origin is listed. A "*" entry allows any origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
}

// Serve upgrades an already authenticated request and joins the session to
// the channel of userID.
func Serve(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, userID string, onChat ChatFunc) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	client := newClient(hub, conn, userID, onChat)
	hub.Join(client, userID)

	// The request context ends when the handler returns.
	ctx := context.WithoutCancel(r.Context())
	go client.writePump()
	go client.readPump(ctx)
}
