// Package session leases single pooled connections to callers on a background
// worker. A worker holds its connection from acquisition until release, plus
// an optional hold delay, so pool exhaustion can be reproduced on demand.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gamevault/backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// State is a worker's lifecycle position.
type State int32

const (
	Starting State = iota
	Ready
	Holding
	Released
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Holding:
		return "holding"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultPollAttempts = 20
)

// Config bounds the readiness wait and sets the artificial hold.
type Config struct {
	PollInterval time.Duration
	PollAttempts int
	// HoldDelay keeps the connection inside an open transaction after
	// release. Zero commits immediately.
	HoldDelay time.Duration
}

func (c Config) normalized() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = DefaultPollAttempts
	}
	if c.HoldDelay < 0 {
		c.HoldDelay = 0
	}
	return c
}

// Window is the longest Await can block.
func (c Config) Window() time.Duration {
	c = c.normalized()
	return c.PollInterval * time.Duration(c.PollAttempts)
}

// Worker owns one pooled connection for its lifetime. Release ends the
// caller's use of the connection and starts the hold; it never shortens the
// hold. Cancel is the only interrupt: it stops acquisition, the ready wait or
// a running hold delay, and an interrupted hold rolls back.
type Worker struct {
	id     string
	cfg    Config
	cancel context.CancelFunc

	ready       chan struct{}
	release     chan struct{}
	done        chan struct{}
	releaseOnce sync.Once

	state atomic.Int32

	mu      sync.Mutex
	session *gorm.DB
	err     error
}

// Start begins acquiring a connection from db's pool in the background.
// Cancelling ctx has the same effect as Cancel.
func Start(ctx context.Context, db *gorm.DB, cfg Config) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	w := &Worker{
		id:      uuid.NewString(),
		cfg:     cfg.normalized(),
		cancel:  cancel,
		ready:   make(chan struct{}),
		release: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run(ctx, db)
	return w
}

func (w *Worker) run(ctx context.Context, db *gorm.DB) {
	defer close(w.done)
	defer w.cancel()

	err := db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		w.mu.Lock()
		w.session = conn.Session(&gorm.Session{NewDB: true})
		w.mu.Unlock()
		w.state.Store(int32(Ready))
		close(w.ready)

		select {
		case <-w.release:
		case <-ctx.Done():
			return ctx.Err()
		}

		w.state.Store(int32(Holding))
		return w.hold(ctx, conn)
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("session %s: %v", w.id, err)
	}
	w.mu.Lock()
	w.err = err
	w.session = nil
	w.mu.Unlock()
	w.state.Store(int32(Released))
}

// hold runs the emulated slow transaction. An interrupted delay rolls back.
func (w *Worker) hold(ctx context.Context, conn *gorm.DB) error {
	tx := conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin hold transaction: %w", tx.Error)
	}

	if w.cfg.HoldDelay > 0 {
		timer := time.NewTimer(w.cfg.HoldDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			tx.Rollback()
			return ctx.Err()
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit hold transaction: %w", err)
	}
	return nil
}

// Await blocks until the connection is ready, checking every PollInterval
// for at most PollAttempts ticks. It fails with domain.ErrStorageUnavailable
// on timeout, on acquisition failure, or when ctx ends. The caller must then
// Cancel the worker.
func (w *Worker) Await(ctx context.Context) (*gorm.DB, error) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < w.cfg.PollAttempts; attempt++ {
		select {
		case <-w.ready:
			if s := w.Session(); s != nil {
				return s, nil
			}
			return nil, fmt.Errorf("session %s already released: %w", w.id, domain.ErrStorageUnavailable)
		case <-w.done:
			return nil, fmt.Errorf("session %s: %w: %v", w.id, domain.ErrStorageUnavailable, w.Err())
		case <-ctx.Done():
			return nil, fmt.Errorf("session %s: %w: %v", w.id, domain.ErrStorageUnavailable, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil, fmt.Errorf("session %s not ready after %d attempts: %w", w.id, w.cfg.PollAttempts, domain.ErrStorageUnavailable)
}

// Session returns the leased connection while the worker is Ready or
// Holding, nil otherwise.
func (w *Worker) Session() *gorm.DB {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Release tells the worker the caller is done with the connection. The
// worker then starts its hold transaction, waits the full HoldDelay, commits
// and returns the connection. Use Cancel to cut the hold short.
func (w *Worker) Release() {
	w.releaseOnce.Do(func() { close(w.release) })
}

// Cancel aborts the worker wherever it is, including during the hold delay
// after Release. The connection goes back to the pool and Err reports
// context.Canceled. Safe to call more than once.
func (w *Worker) Cancel() {
	w.cancel()
}

// Done is closed once the connection has gone back to the pool.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err is the worker's terminal error, valid after Done is closed.
// context.Canceled means the worker was cancelled.
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Worker) State() State { return State(w.state.Load()) }

func (w *Worker) ID() string { return w.id }
