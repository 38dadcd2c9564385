package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireflow/internal/domain/auth"
)

type memStore struct {
	accounts []Account
	hashes   map[string]string
}

func (m *memStore) GetAccount(_ context.Context, id string) (Account, error) {
	for _, acc := range m.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (m *memStore) ListByCreator(_ context.Context, creatorID, role string) ([]Account, error) {
	var out []Account
	for _, acc := range m.accounts {
		if acc.CreatedBy == creatorID && acc.Role == role {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (m *memStore) ListExcept(_ context.Context, id string) ([]Account, error) {
	var out []Account
	for _, acc := range m.accounts {
		if acc.ID != id {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (m *memStore) ListAll(context.Context) ([]Account, error) {
	return m.accounts, nil
}

func (m *memStore) CreateAccount(ctx context.Context, acc NewAccount, hash string, provision Provision) (Account, error) {
	for _, existing := range m.accounts {
		if existing.Email == acc.Email {
			return Account{}, ErrEmailExists
		}
	}
	created := Account{
		ID:        acc.Email,
		Name:      acc.Name,
		Email:     acc.Email,
		Phone:     acc.Phone,
		Role:      acc.Role,
		CreatedBy: acc.CreatedBy,
		CreatedAt: time.Now(),
	}
	if provision != nil {
		if err := provision(ctx, nil, created); err != nil {
			return Account{}, err
		}
	}
	m.accounts = append(m.accounts, created)
	if m.hashes == nil {
		m.hashes = map[string]string{}
	}
	m.hashes[created.ID] = hash
	return created, nil
}

func TestCreateEmployeeGeneratesPassword(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	acc, password, err := svc.CreateEmployee(context.Background(), "hr-1", NewEmployee{Name: " Asha ", Email: "Asha@Example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", acc.Email)
	assert.Equal(t, "Asha", acc.Name)
	assert.Equal(t, auth.RoleEmployee, acc.Role)
	assert.Equal(t, "hr-1", acc.CreatedBy)
	assert.Len(t, password, 10)
	require.NoError(t, auth.CheckPassword(store.hashes[acc.ID], password))
}

func TestCreateEmployeeKeepsGivenPasswordAndRejectsDuplicates(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	_, password, err := svc.CreateEmployee(context.Background(), "hr-1", NewEmployee{Name: "Ravi", Email: "ravi@example.com", Password: "Secret#1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Secret#1", password)

	_, _, err = svc.CreateEmployee(context.Background(), "hr-1", NewEmployee{Name: "Ravi 2", Email: "ravi@example.com"}, nil)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestListEmployeesOf(t *testing.T) {
	store := &memStore{accounts: []Account{
		{ID: "hr-1", Role: auth.RoleHR},
		{ID: "e1", Role: auth.RoleEmployee, CreatedBy: "hr-1"},
		{ID: "e2", Role: auth.RoleEmployee, CreatedBy: "hr-2"},
		{ID: "h3", Role: auth.RoleHR, CreatedBy: "hr-1"},
	}}
	got, err := NewService(store).ListEmployeesOf(context.Background(), "hr-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}

func TestCreateWithRole(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)

	acc, _, err := svc.Create(context.Background(), "admin-1", auth.RoleHR, NewEmployee{Name: "Ravi", Email: "ravi@example.com", Password: "Secret123"}, nil)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleHR, acc.Role)
	assert.NoError(t, auth.CheckPassword(store.hashes[acc.ID], "Secret123"))

	_, _, err = svc.Create(context.Background(), "admin-1", "superuser", NewEmployee{Email: "x@example.com"}, nil)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateProvisionFailureKeepsNoAccount(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	boom := errors.New("checklist insert failed")

	var provisioned Account
	_, _, err := svc.CreateEmployee(context.Background(), "hr-1", NewEmployee{Name: "Lina", Email: "lina@example.com"},
		func(_ context.Context, _ pgx.Tx, acc Account) error {
			provisioned = acc
			return boom
		})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "lina@example.com", provisioned.Email)
	assert.Empty(t, store.accounts)

	_, _, err = svc.CreateEmployee(context.Background(), "hr-1", NewEmployee{Name: "Lina", Email: "lina@example.com"}, nil)
	assert.NoError(t, err)
}
