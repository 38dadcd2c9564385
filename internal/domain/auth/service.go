package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"-"`
}

type StoreAPI interface {
	FindUserByEmail(ctx context.Context, email string) (LoginUser, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (LoginUser, error) {
	var out LoginUser
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, name, email, role, password_hash
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&out.ID, &out.Name, &out.Email, &out.Role, &out.Password)
	return out, err
}

type Service struct {
	store    StoreAPI
	secret   string
	tokenTTL time.Duration
}

func NewService(store StoreAPI, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

// Login checks the password and issues a signed token for the account.
func (s *Service) Login(ctx context.Context, email, password string) (string, LoginUser, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return "", LoginUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", LoginUser{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return "", LoginUser{}, ErrInvalidCredentials
	}
	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, RoleName: user.Role, Email: user.Email}, s.tokenTTL)
	if err != nil {
		return "", LoginUser{}, err
	}
	return token, user, nil
}
