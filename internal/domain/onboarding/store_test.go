package onboarding_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireflow/internal/domain/accounts"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/platform/config"
	"hireflow/internal/platform/db"
)

func testPool(t *testing.T) *db.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool, "../../../migrations"))
	return pool
}

func createEmployee(t *testing.T, pool *db.Pool) string {
	t.Helper()
	var id string
	email := fmt.Sprintf("store-%d@example.com", time.Now().UnixNano())
	err := pool.QueryRow(context.Background(), `
    INSERT INTO users (name, email, role, password_hash) VALUES ('Store Test', $1, 'employee', 'x')
    RETURNING id::text`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestStoreConcurrentMutateKeepsEveryKey(t *testing.T) {
	pool := testPool(t)
	store := onboarding.NewStore(pool)
	svc := onboarding.NewService(store, nil)
	ctx := context.Background()
	employeeID := createEmployee(t, pool)

	keys := onboarding.Template(onboarding.LevelFresher)
	var wg sync.WaitGroup
	for _, req := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MergeUploads(ctx, employeeID, onboarding.Patch{Entries: []onboarding.Entry{{Key: req.Key, URL: "https://x/" + req.Key}}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := store.Get(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.LevelFresher, rec.ExperienceLevel)
	assert.Len(t, rec.UploadedDocs, len(keys))
	assert.Equal(t, 88, rec.CompletionPercent)
}

func TestStoreCreateDuplicate(t *testing.T) {
	pool := testPool(t)
	store := onboarding.NewStore(pool)
	ctx := context.Background()
	employeeID := createEmployee(t, pool)

	_, err := store.Create(ctx, onboarding.NewRecord(employeeID, onboarding.LevelExperienced))
	require.NoError(t, err)
	_, err = store.Create(ctx, onboarding.NewRecord(employeeID, onboarding.LevelFresher))
	assert.ErrorIs(t, err, onboarding.ErrDuplicateRecord)

	sums, err := store.Summaries(ctx, []string{employeeID})
	require.NoError(t, err)
	assert.Equal(t, onboarding.LevelExperienced, sums[employeeID].ExperienceLevel)
}

func TestStoreMalformedIDs(t *testing.T) {
	pool := testPool(t)
	store := onboarding.NewStore(pool)
	ctx := context.Background()
	employeeID := createEmployee(t, pool)
	_, err := store.Create(ctx, onboarding.NewRecord(employeeID, onboarding.LevelFresher))
	require.NoError(t, err)

	_, err = store.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, onboarding.ErrNotFound)

	rec, err := store.Get(ctx, strings.ToUpper(employeeID))
	require.NoError(t, err)
	assert.Equal(t, employeeID, rec.EmployeeID)

	sums, err := store.Summaries(ctx, []string{"bogus", employeeID, ""})
	require.NoError(t, err)
	assert.Len(t, sums, 1)
	assert.Contains(t, sums, employeeID)
}

func TestChecklistSharesAccountTransaction(t *testing.T) {
	pool := testPool(t)
	store := onboarding.NewStore(pool)
	svc := onboarding.NewService(store, nil)
	accountsSvc := accounts.NewService(accounts.NewStore(pool))
	ctx := context.Background()
	email := fmt.Sprintf("tx-%d@example.com", time.Now().UnixNano())

	withChecklist := func(ctx context.Context, tx pgx.Tx, acc accounts.Account) error {
		_, err := svc.InitializeTx(ctx, tx, acc.ID, onboarding.LevelExperienced)
		return err
	}

	_, _, err := accountsSvc.CreateEmployee(ctx, "", accounts.NewEmployee{Name: "Tx Test", Email: email},
		func(ctx context.Context, tx pgx.Tx, acc accounts.Account) error {
			if err := withChecklist(ctx, tx, acc); err != nil {
				return err
			}
			return errors.New("abort")
		})
	require.Error(t, err)
	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM users WHERE email = $1", email).Scan(&count))
	assert.Zero(t, count)

	acc, _, err := accountsSvc.CreateEmployee(ctx, "", accounts.NewEmployee{Name: "Tx Test", Email: email}, withChecklist)
	require.NoError(t, err)
	rec, err := store.Get(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.LevelExperienced, rec.ExperienceLevel)
	assert.Len(t, rec.RequiredDocs, 17)
}
