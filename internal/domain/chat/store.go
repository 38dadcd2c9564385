package chat

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireflow/internal/platform/db"
)

const messageColumns = `id::text, sender_id::text, receiver_id::text, message, read, created_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanMessage(row pgx.Row) (Message, error) {
	var msg Message
	err := row.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Message, &msg.Read, &msg.Timestamp)
	return msg, err
}

func (s *Store) Insert(ctx context.Context, senderID, receiverID, message string) (Message, error) {
	return scanMessage(s.DB.QueryRow(ctx, `
    INSERT INTO chat_messages (sender_id, receiver_id, message)
    VALUES ($1,$2,$3)
    RETURNING `+messageColumns, senderID, receiverID, message))
}

func (s *Store) Thread(ctx context.Context, userA, userB string, page Page) ([]Message, error) {
	a, okA := db.ID(userA)
	b, okB := db.ID(userB)
	if !okA || !okB {
		return []Message{}, nil
	}
	query := `
    SELECT ` + messageColumns + `
    FROM chat_messages
    WHERE (sender_id = $1::uuid AND receiver_id = $2::uuid)
       OR (sender_id = $2::uuid AND receiver_id = $1::uuid)
    ORDER BY created_at, seq`
	args := []any{a, b}
	if page.Limit > 0 {
		query += " LIMIT $3 OFFSET $4"
		args = append(args, page.Limit, max(page.Offset, 0))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, readerID, counterpartID string) (int64, error) {
	reader, okR := db.ID(readerID)
	counterpart, okC := db.ID(counterpartID)
	if !okR || !okC {
		return 0, nil
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE chat_messages SET read = true
    WHERE sender_id = $1::uuid AND receiver_id = $2::uuid AND read = false
  `, counterpart, reader)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) UnreadBySender(ctx context.Context, receiverID string) (map[string]int, error) {
	receiver, ok := db.ID(receiverID)
	if !ok {
		return map[string]int{}, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT sender_id::text, COUNT(1)
    FROM chat_messages
    WHERE receiver_id = $1::uuid AND read = false
    GROUP BY sender_id
  `, receiver)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var sender string
		var count int
		if err := rows.Scan(&sender, &count); err != nil {
			return nil, err
		}
		if count > 0 {
			out[sender] = count
		}
	}
	return out, rows.Err()
}
