package dao

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gamevault/backend/internal/domain"
	"gamevault/backend/internal/hub"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/session"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDAO implements DAO on a gorm connection pool. List and review writes
// run in a transaction on the pool; account writes lease a dedicated
// connection through a session.Worker first.
type GormDAO struct {
	db         *gorm.DB
	sessionCfg session.Config
	hub        *hub.Hub
	bcryptCost int

	mu      sync.Mutex
	workers map[*session.Worker]struct{}
	wg      sync.WaitGroup
}

var _ DAO = (*GormDAO)(nil)

// Option configures a GormDAO.
type Option func(*GormDAO)

// WithSessionConfig sets the readiness wait and hold delay of account writes.
func WithSessionConfig(cfg session.Config) Option {
	return func(d *GormDAO) { d.sessionCfg = cfg }
}

// WithHub publishes an event for every committed mutation.
func WithHub(h *hub.Hub) Option {
	return func(d *GormDAO) { d.hub = h }
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(d *GormDAO) { d.bcryptCost = cost }
}

// NewGormDAO wraps an open, migrated pool.
func NewGormDAO(db *gorm.DB, opts ...Option) *GormDAO {
	d := &GormDAO{
		db:         db,
		bcryptCost: bcrypt.DefaultCost,
		workers:    make(map[*session.Worker]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Close cancels session workers still holding a connection and waits until
// every one of them has returned it to the pool.
func (d *GormDAO) Close() {
	d.mu.Lock()
	for w := range d.workers {
		w.Cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *GormDAO) track(w *session.Worker) {
	d.mu.Lock()
	d.workers[w] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		<-w.Done()
		d.mu.Lock()
		delete(d.workers, w)
		d.mu.Unlock()
	}()
}

// inTx runs fn in one transaction on the shared pool.
func (d *GormDAO) inTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return translate(op, d.db.WithContext(ctx).Transaction(fn))
}

// withSession runs fn in one transaction on a connection leased by a
// session worker. The worker outlives the call: after release it keeps the
// connection for the configured hold delay.
func (d *GormDAO) withSession(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	w := session.Start(context.WithoutCancel(ctx), d.db, d.sessionCfg)
	d.track(w)

	conn, err := w.Await(ctx)
	if err != nil {
		w.Cancel()
		return fmt.Errorf("%s: %w", op, err)
	}

	err = conn.WithContext(ctx).Transaction(fn)
	if err != nil {
		w.Cancel()
	} else {
		w.Release()
	}
	return translate(op, err)
}

// translate keeps domain error kinds and hides everything else behind
// ErrTransactionFailed. Driver errors are formatted, never wrapped.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsKind(err):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransactionFailed, err)
	}
}

func (d *GormDAO) publish(username, eventType string, payload map[string]any) {
	if d.hub == nil {
		return
	}
	d.hub.Broadcast(username, hub.Event{Type: eventType, Payload: payload})
}

func recordExists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func findProfileRow(tx *gorm.DB, username string) (models.Profile, error) {
	var row models.Profile
	if err := tx.First(&row, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, fmt.Errorf("profile %q: %w", username, domain.ErrNotFound)
		}
		return row, err
	}
	return row, nil
}

func findGame(tx *gorm.DB, gameID int) (domain.Game, error) {
	var row models.Game
	if err := tx.First(&row, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Game{}, fmt.Errorf("game %d: %w", gameID, domain.ErrNotFound)
		}
		return domain.Game{}, err
	}
	return row.ToDomain(), nil
}

// loadProfile rebuilds the profile aggregate with its lists and memberships.
func loadProfile(tx *gorm.DB, username string) (*domain.Profile, error) {
	row, err := findProfileRow(tx, username)
	if err != nil {
		return nil, err
	}
	p := row.ToDomain()

	var lists []models.ProfileList
	if err := tx.Where("username = ?", username).Order("position").Find(&lists).Error; err != nil {
		return nil, err
	}
	var listed []models.Listed
	if err := tx.Preload("Game").Where("username = ?", username).Order("position").Find(&listed).Error; err != nil {
		return nil, err
	}

	names := make([]string, 0, len(lists))
	for _, l := range lists {
		names = append(names, l.Name)
	}
	members := make(map[string][]domain.Game)
	for _, l := range listed {
		members[l.ListName] = append(members[l.ListName], l.Game.ToDomain())
	}
	p.RestoreLists(names, members)
	return p, nil
}

// createProfile inserts the profile row and its "My Games" registry row.
func createProfile(tx *gorm.DB, p *domain.Profile) error {
	row := models.ProfileFromDomain(p)
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	return tx.Omit(clause.Associations).Create(&models.ProfileList{Username: p.Username, Name: domain.MyGames, Position: 0}).Error
}

// deleteProfile removes a profile and everything that depends on it.
func deleteProfile(tx *gorm.DB, username string) error {
	for _, model := range []interface{}{&models.Review{}, &models.Listed{}, &models.ProfileList{}, &models.Profile{}} {
		if err := tx.Where("username = ?", username).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func nextPosition(tx *gorm.DB, model interface{}, query string, args ...interface{}) (int, error) {
	var next int
	err := tx.Model(model).Where(query, args...).Select("COALESCE(MAX(position), -1) + 1").Scan(&next).Error
	return next, err
}
