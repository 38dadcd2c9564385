package accounts

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Provision runs inside the transaction that inserts acc. An error rolls the
// account back.
type Provision func(ctx context.Context, tx pgx.Tx, acc Account) error

type StoreAPI interface {
	GetAccount(ctx context.Context, id string) (Account, error)
	ListByCreator(ctx context.Context, creatorID, role string) ([]Account, error)
	ListExcept(ctx context.Context, id string) ([]Account, error)
	ListAll(ctx context.Context) ([]Account, error)
	CreateAccount(ctx context.Context, acc NewAccount, passwordHash string, provision Provision) (Account, error)
}
