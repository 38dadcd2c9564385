package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Publisher delivers a stored message to the live sessions of a user.
type Publisher interface {
	Publish(ctx context.Context, userID, event string, payload any)
}

const EventMessage = "chat-message"

type Service struct {
	store     StoreAPI
	publisher Publisher
}

func NewService(store StoreAPI, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// Send persists a message. Whether the two users may talk is decided by the
// caller.
func (s *Service) Send(ctx context.Context, senderID, receiverID, message string) (Message, error) {
	senderID = strings.TrimSpace(senderID)
	receiverID = strings.TrimSpace(receiverID)
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return Message{}, ErrInvalidParticipants
	}
	return s.store.Insert(ctx, senderID, receiverID, message)
}

// Deliver pushes a stored message to both participants' sessions.
func (s *Service) Deliver(ctx context.Context, msg Message) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, msg.ReceiverID, EventMessage, msg)
	s.publisher.Publish(ctx, msg.SenderID, EventMessage, msg)
}

// SendAndDeliver persists then fans out. Nothing is delivered when the write
// fails.
func (s *Service) SendAndDeliver(ctx context.Context, senderID, receiverID, message string) (Message, error) {
	msg, err := s.Send(ctx, senderID, receiverID, message)
	if err != nil {
		return Message{}, err
	}
	s.Deliver(ctx, msg)
	return msg, nil
}

func (s *Service) History(ctx context.Context, userA, userB string, page Page) ([]Message, error) {
	return s.store.Thread(ctx, userA, userB, page)
}

func (s *Service) MarkRead(ctx context.Context, readerID, counterpartID string) error {
	_, err := s.store.MarkRead(ctx, readerID, counterpartID)
	return err
}

// UnreadCounts maps each sender to the number of unread messages they sent
// userID. Malformed ids yield an empty map.
func (s *Service) UnreadCounts(ctx context.Context, userID string) (map[string]int, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return map[string]int{}, nil
	}
	counts, err := s.store.UnreadBySender(ctx, userID)
	if err != nil {
		return nil, err
	}
	for sender, n := range counts {
		if n <= 0 {
			delete(counts, sender)
		}
	}
	return counts, nil
}
