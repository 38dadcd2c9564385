package notifications

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireflow/internal/platform/db"
)

const notificationColumns = `id::text, user_id::text, type, title, body, read_at, created_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt)
	return n, err
}

func (s *Store) CreateNotification(ctx context.Context, userID, ntype, title, body string) (Notification, error) {
	return scanNotification(s.DB.QueryRow(ctx, `
    INSERT INTO notifications (user_id, type, title, body)
    VALUES ($1,$2,$3,$4)
    RETURNING `+notificationColumns, userID, ntype, title, body))
}

func (s *Store) UserEmail(ctx context.Context, userID string) (string, error) {
	key, ok := db.ID(userID)
	if !ok {
		return "", pgx.ErrNoRows
	}
	var email string
	if err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE id = $1::uuid", key).Scan(&email); err != nil {
		return "", err
	}
	return email, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	key, ok := db.ID(userID)
	if !ok {
		return []Notification{}, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+notificationColumns+`
    FROM notifications
    WHERE user_id = $1::uuid
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, key, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountNotifications(ctx context.Context, userID string) (int, error) {
	key, ok := db.ID(userID)
	if !ok {
		return 0, nil
	}
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = $1::uuid", key).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	user, okU := db.ID(userID)
	id, okN := db.ID(notificationID)
	if !okU || !okN {
		return nil
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE user_id = $1::uuid AND id = $2::uuid AND read_at IS NULL
  `, user, id)
	return err
}
