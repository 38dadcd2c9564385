package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireflow/internal/platform/db"
)

const recordColumns = `employee_id::text, experience_level, required_docs, uploaded_docs, other_docs, COALESCE(signature_url, ''), completion_percent, created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var required, uploaded, other []byte
	if err := row.Scan(&rec.EmployeeID, &rec.ExperienceLevel, &required, &uploaded, &other, &rec.SignatureURL, &rec.CompletionPercent, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	if err := decodeList(required, &rec.RequiredDocs); err != nil {
		return Record{}, fmt.Errorf("decode required_docs: %w", err)
	}
	if err := decodeList(uploaded, &rec.UploadedDocs); err != nil {
		return Record{}, fmt.Errorf("decode uploaded_docs: %w", err)
	}
	if err := decodeList(other, &rec.OtherDocs); err != nil {
		return Record{}, fmt.Errorf("decode other_docs: %w", err)
	}
	return rec, nil
}

func decodeList[T any](raw []byte, out *[]T) error {
	*out = []T{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func encodeLists(rec Record) (required, uploaded, other []byte, err error) {
	if required, err = json.Marshal(nonNil(rec.RequiredDocs)); err != nil {
		return
	}
	if uploaded, err = json.Marshal(nonNil(rec.UploadedDocs)); err != nil {
		return
	}
	other, err = json.Marshal(nonNil(rec.OtherDocs))
	return
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	return create(ctx, s.DB, rec)
}

// CreateTx inserts rec inside a caller-owned transaction.
func (s *Store) CreateTx(ctx context.Context, tx pgx.Tx, rec Record) (Record, error) {
	return create(ctx, tx, rec)
}

func create(ctx context.Context, q queryer, rec Record) (Record, error) {
	created, err := insertRecord(ctx, q, rec, false)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Record{}, ErrDuplicateRecord
	}
	return created, err
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// insertRecord writes rec; with ignoreConflict an existing row is left as is
// and pgx.ErrNoRows is returned.
func insertRecord(ctx context.Context, q queryer, rec Record, ignoreConflict bool) (Record, error) {
	required, uploaded, other, err := encodeLists(rec)
	if err != nil {
		return Record{}, err
	}
	conflict := ""
	if ignoreConflict {
		conflict = " ON CONFLICT (employee_id) DO NOTHING"
	}
	return scanRecord(q.QueryRow(ctx, `
    INSERT INTO onboarding_records (employee_id, experience_level, required_docs, uploaded_docs, other_docs, signature_url, completion_percent)
    VALUES ($1,$2,$3,$4,$5,$6,$7)`+conflict+`
    RETURNING `+recordColumns,
		rec.EmployeeID, rec.ExperienceLevel, required, uploaded, other, nullIfEmpty(rec.SignatureURL), rec.CompletionPercent))
}

func (s *Store) Get(ctx context.Context, employeeID string) (Record, error) {
	key, ok := db.ID(employeeID)
	if !ok {
		return Record{}, ErrNotFound
	}
	rec, err := scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+" FROM onboarding_records WHERE employee_id = $1::uuid", key))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) Mutate(ctx context.Context, employeeID string, init func() Record, apply func(*Record) error) (Record, error) {
	key, ok := db.ID(employeeID)
	if !ok {
		return Record{}, ErrNotFound
	}
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback(ctx)

	if init != nil {
		if _, err := insertRecord(ctx, tx, init(), true); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return Record{}, err
		}
	}

	rec, err := scanRecord(tx.QueryRow(ctx, "SELECT "+recordColumns+" FROM onboarding_records WHERE employee_id = $1::uuid FOR UPDATE", key))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	if err := apply(&rec); err != nil {
		return Record{}, err
	}

	required, uploaded, other, err := encodeLists(rec)
	if err != nil {
		return Record{}, err
	}
	updated, err := scanRecord(tx.QueryRow(ctx, `
    UPDATE onboarding_records
    SET required_docs = $2, uploaded_docs = $3, other_docs = $4, signature_url = $5, completion_percent = $6, updated_at = now()
    WHERE employee_id = $1::uuid
    RETURNING `+recordColumns,
		key, required, uploaded, other, nullIfEmpty(rec.SignatureURL), rec.CompletionPercent))
	if err != nil {
		return Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return updated, nil
}

func (s *Store) Summaries(ctx context.Context, employeeIDs []string) (map[string]Summary, error) {
	out := map[string]Summary{}
	keys := db.IDs(employeeIDs)
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id::text, completion_percent, experience_level
    FROM onboarding_records
    WHERE employee_id = ANY($1::uuid[])
  `, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var sum Summary
		if err := rows.Scan(&id, &sum.CompletionPercent, &sum.ExperienceLevel); err != nil {
			return nil, err
		}
		out[id] = sum
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
