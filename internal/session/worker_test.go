package session

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gamevault/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openPool(t *testing.T, size int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "session.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(size)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func waitDone(t *testing.T, w *Worker, within time.Duration) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(within):
		t.Fatalf("worker %s still %s after %s", w.ID(), w.State(), within)
	}
}

func TestWorkerLifecycle(t *testing.T) {
	db := openPool(t, 1)
	w := Start(context.Background(), db, Config{PollInterval: 10 * time.Millisecond, PollAttempts: 50})

	conn, err := w.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Ready, w.State())

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	w.Release()
	waitDone(t, w, time.Second)
	assert.Equal(t, Released, w.State())
	assert.NoError(t, w.Err())
	assert.Nil(t, w.Session())
}

func TestWorkerHoldsConnectionForDelay(t *testing.T) {
	db := openPool(t, 1)
	hold := 100 * time.Millisecond
	w := Start(context.Background(), db, Config{PollInterval: 10 * time.Millisecond, PollAttempts: 50, HoldDelay: hold})

	_, err := w.Await(context.Background())
	require.NoError(t, err)

	start := time.Now()
	w.Release()
	assert.Eventually(t, func() bool { return w.State() == Holding }, time.Second, 5*time.Millisecond)
	// A repeated release does not cut the hold short.
	w.Release()
	waitDone(t, w, time.Second)
	assert.GreaterOrEqual(t, time.Since(start), hold)
	assert.NoError(t, w.Err())
}

func TestSecondWorkerSeesExhaustedPool(t *testing.T) {
	db := openPool(t, 1)
	cfg := Config{PollInterval: 10 * time.Millisecond, PollAttempts: 20, HoldDelay: 2 * time.Second}

	first := Start(context.Background(), db, cfg)
	_, err := first.Await(context.Background())
	require.NoError(t, err)
	first.Release()

	second := Start(context.Background(), db, cfg)
	start := time.Now()
	_, err = second.Await(context.Background())
	elapsed := time.Since(start)

	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Less(t, elapsed, cfg.Window()+time.Second)
	assert.Equal(t, Starting, second.State())

	second.Cancel()
	waitDone(t, second, time.Second)
	assert.ErrorIs(t, second.Err(), context.Canceled)

	// Cancelling interrupts the hold instead of waiting out the 2s.
	first.Cancel()
	waitDone(t, first, time.Second)
	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.Equal(t, Released, first.State())
}

func TestCancelBeforeRelease(t *testing.T) {
	db := openPool(t, 1)
	w := Start(context.Background(), db, Config{})
	_, err := w.Await(context.Background())
	require.NoError(t, err)

	w.Cancel()
	waitDone(t, w, time.Second)
	assert.ErrorIs(t, w.Err(), context.Canceled)

	_, err = w.Await(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	// The connection went back to the pool.
	next := Start(context.Background(), db, Config{})
	_, err = next.Await(context.Background())
	require.NoError(t, err)
	next.Release()
	waitDone(t, next, time.Second)
}

func TestAwaitHonoursCallerContext(t *testing.T) {
	db := openPool(t, 1)
	blocker := Start(context.Background(), db, Config{})
	_, err := blocker.Await(context.Background())
	require.NoError(t, err)
	defer func() {
		blocker.Cancel()
		waitDone(t, blocker, time.Second)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := Start(context.Background(), db, Config{PollAttempts: 1000})
	_, err = w.Await(ctx)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	w.Cancel()
	waitDone(t, w, time.Second)
}

func TestConcurrentWorkersBoundedByPoolSize(t *testing.T) {
	const poolSize, callers = 2, 6
	db := openPool(t, poolSize)
	cfg := Config{PollInterval: 10 * time.Millisecond, PollAttempts: 10, HoldDelay: 500 * time.Millisecond}

	var leased, unavailable atomic.Int32
	workers := make([]*Worker, callers)
	var g errgroup.Group
	for i := range workers {
		workers[i] = Start(context.Background(), db, cfg)
		w := workers[i]
		g.Go(func() error {
			if _, err := w.Await(context.Background()); err != nil {
				unavailable.Add(1)
				w.Cancel()
				return nil
			}
			leased.Add(1)
			w.Release()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, poolSize, leased.Load())
	assert.EqualValues(t, callers-poolSize, unavailable.Load())
	for _, w := range workers {
		waitDone(t, w, 2*time.Second)
	}
}

func TestConfigNormalized(t *testing.T) {
	c := Config{HoldDelay: -time.Second}.normalized()
	assert.Equal(t, DefaultPollInterval, c.PollInterval)
	assert.Equal(t, DefaultPollAttempts, c.PollAttempts)
	assert.Zero(t, c.HoldDelay)
	assert.Equal(t, DefaultPollInterval*DefaultPollAttempts, Config{}.Window())
}
