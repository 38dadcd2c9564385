package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireflow/internal/domain/auth"
	"hireflow/internal/platform/config"
)

const (
	seedAdminName           = "Super Admin"
	devDefaultAdminPassword  = "Admin@1234"
)

// Seed makes sure an admin account exists so the first HR users can be
// provisioned. Outside production an empty SEED_ADMIN_PASSWORD falls back to a
// development default.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	password := cfg.SeedAdminPassword
	if strings.TrimSpace(password) == "" && cfg.Environment != "production" {
		password = devDefaultAdminPassword
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, password)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id::text FROM users WHERE lower(email) = $1", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, email, role, password_hash)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (email) DO NOTHING
  `, seedAdminName, email, auth.RoleAdmin, hash)
	if err != nil {
		return err
	}
	slog.Info("seeded admin account", "email", email)
	return nil
}
