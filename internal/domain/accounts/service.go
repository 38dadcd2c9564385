package accounts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"hireflow/internal/domain/auth"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]Account, error) {
	return s.store.ListAll(ctx)
}

// ListEmployeesOf returns the employee accounts provisioned by hrID.
func (s *Service) ListEmployeesOf(ctx context.Context, hrID string) ([]Account, error) {
	return s.store.ListByCreator(ctx, hrID, auth.RoleEmployee)
}

// CreateEmployee provisions an employee account owned by creatorID. When no
// password is supplied a temporary one is generated and returned so the
// creator can share it.
func (s *Service) CreateEmployee(ctx context.Context, creatorID string, in NewEmployee, provision Provision) (Account, string, error) {
	return s.Create(ctx, creatorID, auth.RoleEmployee, in, provision)
}

// Create provisions an account of any role on behalf of creatorID. provision,
// when set, commits or rolls back together with the account.
func (s *Service) Create(ctx context.Context, creatorID, role string, in NewEmployee, provision Provision) (Account, string, error) {
	if !auth.ValidRole(role) {
		return Account{}, "", ErrInvalidRole
	}
	password := in.Password
	if strings.TrimSpace(password) == "" {
		password = TemporaryPassword()
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return Account{}, "", err
	}
	acc, err := s.store.CreateAccount(ctx, NewAccount{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      role,
		CreatedBy: creatorID,
	}, hash, provision)
	if err != nil {
		return Account{}, "", err
	}
	return acc, password, nil
}

func TemporaryPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
