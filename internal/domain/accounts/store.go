package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireflow/internal/platform/db"
)

const accountColumns = `id::text, name, email, phone, avatar_url, role, COALESCE(created_by::text, ''), created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanAccount(row pgx.Row) (Account, error) {
	var acc Account
	err := row.Scan(&acc.ID, &acc.Name, &acc.Email, &acc.Phone, &acc.AvatarURL, &acc.Role, &acc.CreatedBy, &acc.CreatedAt, &acc.UpdatedAt)
	return acc, err
}

func (s *Store) GetAccount(ctx context.Context, id string) (Account, error) {
	key, ok := db.ID(id)
	if !ok {
		return Account{}, ErrNotFound
	}
	acc, err := scanAccount(s.DB.QueryRow(ctx, "SELECT "+accountColumns+" FROM users WHERE id = $1::uuid", key))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return acc, err
}

func (s *Store) ListByCreator(ctx context.Context, creatorID, role string) ([]Account, error) {
	key, ok := db.ID(creatorID)
	if !ok {
		return []Account{}, nil
	}
	return s.list(ctx, "SELECT "+accountColumns+" FROM users WHERE created_by = $1::uuid AND role = $2 ORDER BY created_at", key, role)
}

func (s *Store) ListExcept(ctx context.Context, id string) ([]Account, error) {
	key, ok := db.ID(id)
	if !ok {
		return s.ListAll(ctx)
	}
	return s.list(ctx, "SELECT "+accountColumns+" FROM users WHERE id <> $1::uuid ORDER BY created_at", key)
}

func (s *Store) ListAll(ctx context.Context) ([]Account, error) {
	return s.list(ctx, "SELECT "+accountColumns+" FROM users ORDER BY created_at")
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Account, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, acc NewAccount, passwordHash string, provision Provision) (Account, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Account{}, err
	}
	defer tx.Rollback(ctx)

	created, err := scanAccount(tx.QueryRow(ctx, `
    INSERT INTO users (name, email, phone, role, password_hash, created_by)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+accountColumns,
		acc.Name, acc.Email, acc.Phone, acc.Role, passwordHash, nullIfEmpty(acc.CreatedBy)))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Account{}, ErrEmailExists
	}
	if err != nil {
		return Account{}, err
	}
	if provision != nil {
		if err := provision(ctx, tx, created); err != nil {
			return Account{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Account{}, err
	}
	return created, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
