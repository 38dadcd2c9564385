package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Publisher pushes an event to the live sessions of a user.
type Publisher interface {
	Publish(ctx context.Context, userID, event string, payload any)
}

// Runner executes work in the background.
type Runner interface {
	Enqueue(jobType string, run func(ctx context.Context) error) bool
}

const mailJob = "notification_email"

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	Publisher   Publisher
	DefaultFrom string
	// Background, when set, takes email delivery off the caller's path.
	Background Runner
}

func New(store StoreAPI, mailer Mailer, publisher Publisher) *Service {
	return &Service{store: store, Mailer: mailer, Publisher: publisher, DefaultFrom: "no-reply@example.com"}
}

// Create stores a notification, pushes it live and mails it when a mailer is
// configured. Only the store write can fail the call.
func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	n, err := s.store.CreateNotification(ctx, userID, ntype, title, body)
	if err != nil {
		return err
	}

	if s.Publisher != nil {
		s.Publisher.Publish(ctx, userID, EventNotification, n)
	}

	if s.Mailer == nil {
		return nil
	}
	send := func(ctx context.Context) error {
		s.mail(ctx, userID, title, body)
		return nil
	}
	if s.Background != nil && s.Background.Enqueue(mailJob, send) {
		return nil
	}
	return send(ctx)
}

func (s *Service) mail(ctx context.Context, userID, title, body string) {
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "notification email lookup failed", "err", err)
		return
	}
	if email == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, body); err != nil {
		slog.WarnContext(ctx, "notification email send failed", "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
