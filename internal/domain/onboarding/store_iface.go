package onboarding

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	Create(ctx context.Context, record Record) (Record, error)
	CreateTx(ctx context.Context, tx pgx.Tx, record Record) (Record, error)
	Get(ctx context.Context, employeeID string) (Record, error)
	// Mutate runs apply on the employee's record under a per-employee lock and
	// persists the result. When init is non-nil a missing record is created from
	// it first; otherwise a missing record yields ErrNotFound.
	Mutate(ctx context.Context, employeeID string, init func() Record, apply func(*Record) error) (Record, error)
	Summaries(ctx context.Context, employeeIDs []string) (map[string]Summary, error)
}
