package dao_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gamevault/backend/internal/config"
	"gamevault/backend/internal/dao"
	"gamevault/backend/internal/dao/daotest"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/domain"
	"gamevault/backend/internal/hub"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/session"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openDB(t *testing.T, poolSize int) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "gamevault.db"),
		MaxOpenConns:   poolSize,
		MaxIdleConns:   poolSize,
		LogLevel:       "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func newGormDAO(t *testing.T, db *gorm.DB, opts ...dao.Option) *dao.GormDAO {
	t.Helper()
	opts = append([]dao.Option{
		dao.WithBcryptCost(bcrypt.MinCost),
		dao.WithSessionConfig(session.Config{PollInterval: 10 * time.Millisecond, PollAttempts: 100}),
	}, opts...)
	d := dao.NewGormDAO(db, opts...)
	t.Cleanup(d.Close)
	return d
}

func TestGormDAOContract(t *testing.T) {
	daotest.Run(t, func(t *testing.T) dao.DAO {
		return newGormDAO(t, openDB(t, 4))
	})
}

func TestGormDAOExhaustedPool(t *testing.T) {
	db := openDB(t, 1)
	cfg := session.Config{PollInterval: 10 * time.Millisecond, PollAttempts: 20, HoldDelay: 2 * time.Second}
	d := newGormDAO(t, db, dao.WithSessionConfig(cfg))
	ctx := context.Background()
	require.NoError(t, d.EnsureSeedData(ctx))

	_, err := d.Register(ctx, domain.Registration{
		Username:   "alice",
		Password:   "s3cret",
		CardNumber: "ES0000000000000000000001",
	})
	require.NoError(t, err)

	// alice's worker keeps the only connection for the hold delay.
	start := time.Now()
	_, err = d.Register(ctx, domain.Registration{
		Username:   "bob",
		Password:   "s3cret",
		CardNumber: "ES0000000000000000000002",
	})
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Less(t, time.Since(start), cfg.Window()+time.Second)

	// Malformed input never waits for a connection.
	start = time.Now()
	err = d.UpdateProfile(ctx, "jlopez", domain.ProfileUpdate{CardNumber: "nope", Email: "not-an-email"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Less(t, time.Since(start), cfg.Window())
}

func TestGormDAOPublishesAfterCommit(t *testing.T) {
	h := hub.NewHub()
	client := make(hub.Client, 4)
	h.Subscribe("jlopez", client)

	d := newGormDAO(t, openDB(t, 4), dao.WithHub(h))
	ctx := context.Background()
	require.NoError(t, d.EnsureSeedData(ctx))

	require.NoError(t, d.CreateList(ctx, "jlopez", "Favorites"))
	require.Error(t, d.CreateList(ctx, "jlopez", "Favorites"))
	require.NoError(t, d.RemoveGame(ctx, "jlopez", domain.MyGames, daotest.Zelda))

	require.Len(t, client, 1)
	var event struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-client, &event))
	assert.Equal(t, hub.ListCreated, event.Type)
	assert.Equal(t, "Favorites", event.Payload["name"])
}

func TestGormDAOSeedPublishesNewAccountsOnce(t *testing.T) {
	h := hub.NewHub()
	client, stop := h.Watch("rluna", 2)
	defer stop()

	d := newGormDAO(t, openDB(t, 4), dao.WithHub(h))
	ctx := context.Background()
	require.NoError(t, d.EnsureSeedData(ctx))
	require.NoError(t, d.EnsureSeedData(ctx))

	require.Len(t, client, 1)
	var event struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(<-client, &event))
	assert.Equal(t, hub.AccountRegistered, event.Type)
}

func TestGormDAOHidesDriverErrors(t *testing.T) {
	db := openDB(t, 4)
	d := newGormDAO(t, db)
	ctx := context.Background()
	require.NoError(t, d.EnsureSeedData(ctx))
	require.NoError(t, db.Migrator().DropTable(&models.Listed{}))

	err := d.AddGame(ctx, "jlopez", domain.MyGames, daotest.Zelda)
	require.ErrorIs(t, err, domain.ErrTransactionFailed)
	var sqliteErr sqlite3.Error
	assert.False(t, errors.As(err, &sqliteErr))

	_, err = d.ListsOf(ctx, "jlopez")
	require.ErrorIs(t, err, domain.ErrTransactionFailed)
}

func TestGormDAORollsBackFailedCascade(t *testing.T) {
	db := openDB(t, 4)
	d := newGormDAO(t, db)
	ctx := context.Background()
	require.NoError(t, d.EnsureSeedData(ctx))
	require.NoError(t, d.UpsertReview(ctx, domain.Review{Username: "jlopez", Game: domain.Game{ID: daotest.Halo}, Score: 6}))
	require.NoError(t, db.Migrator().DropTable(&models.ProfileList{}))

	// reviews are deleted first, then the missing table aborts the cascade.
	err := d.DeleteAccount(ctx, "jlopez", "qwerty")
	require.ErrorIs(t, err, domain.ErrTransactionFailed)

	review, err := d.ReviewFor(ctx, "jlopez", daotest.Halo)
	require.NoError(t, err)
	assert.Equal(t, 6, review.Score)
}
