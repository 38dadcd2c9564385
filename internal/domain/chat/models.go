package chat

import "time"

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	Timestamp  time.Time `json:"timestamp"`
}

// Page bounds a history query. A zero Limit returns the whole thread.
type Page struct {
	Limit  int
	Offset int
}
