// Package contacts derives who a user may message from the account
// relationship graph: HR users talk to the employees they provisioned,
// employees to the account that provisioned them, admins to everyone.
package contacts

import (
	"context"
	"errors"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/auth"
)

// ErrNotPermitted is returned when two users are not each other's contacts.
var ErrNotPermitted = errors.New("users are not contacts")

type AccountReader interface {
	GetAccount(ctx context.Context, id string) (accounts.Account, error)
	ListByCreator(ctx context.Context, creatorID, role string) ([]accounts.Account, error)
	ListExcept(ctx context.Context, id string) ([]accounts.Account, error)
}

type Resolver struct {
	accounts AccountReader
}

func NewResolver(reader AccountReader) *Resolver {
	return &Resolver{accounts: reader}
}

// Contacts returns the permitted counterparties of userID.
func (r *Resolver) Contacts(ctx context.Context, userID string) ([]accounts.Account, error) {
	user, err := r.accounts.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.contactsOf(ctx, user)
}

func (r *Resolver) contactsOf(ctx context.Context, user accounts.Account) ([]accounts.Account, error) {
	switch user.Role {
	case auth.RoleHR:
		return r.accounts.ListByCreator(ctx, user.ID, auth.RoleEmployee)
	case auth.RoleEmployee:
		if user.CreatedBy == "" {
			return []accounts.Account{}, nil
		}
		creator, err := r.accounts.GetAccount(ctx, user.CreatedBy)
		if errors.Is(err, accounts.ErrNotFound) {
			return []accounts.Account{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []accounts.Account{creator}, nil
	default:
		return r.accounts.ListExcept(ctx, user.ID)
	}
}

// CanMessage reports whether either side lists the other as a contact, so a
// reply to an admin-initiated thread is allowed.
func (r *Resolver) CanMessage(ctx context.Context, senderID, receiverID string) (bool, error) {
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return false, nil
	}
	for _, pair := range [][2]string{{senderID, receiverID}, {receiverID, senderID}} {
		list, err := r.Contacts(ctx, pair[0])
		if errors.Is(err, accounts.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		for _, acc := range list {
			if acc.ID == pair[1] {
				return true, nil
			}
		}
	}
	return false, nil
}

// Check is CanMessage as an error: ErrNotPermitted when the pair may not talk.
func (r *Resolver) Check(ctx context.Context, senderID, receiverID string) error {
	ok, err := r.CanMessage(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPermitted
	}
	return nil
}
