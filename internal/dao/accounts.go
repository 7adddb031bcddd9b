package dao

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gamevault/backend/internal/domain"
	"gamevault/backend/internal/hub"
	"gamevault/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *GormDAO) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w: %v", domain.ErrValidation, err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (d *GormDAO) Authenticate(ctx context.Context, username, password string) (*domain.Profile, error) {
	p, err := loadProfile(d.db.WithContext(ctx), username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("authenticate: %w", domain.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, translate("authenticate", err)
	}
	if !checkPassword(p.PasswordHash, password) {
		return nil, fmt.Errorf("authenticate: %w", domain.ErrInvalidCredentials)
	}
	return p, nil
}

func (d *GormDAO) Register(ctx context.Context, reg domain.Registration) (*domain.Profile, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	hash, err := d.hashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	p := reg.Profile(hash)

	err = d.withSession(ctx, "register", func(tx *gorm.DB) error {
		exists, err := recordExists(tx, &models.Profile{}, "username = ?", reg.Username)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("username %q: %w", reg.Username, domain.ErrDuplicateUsername)
		}
		return createProfile(tx, p)
	})
	if err != nil {
		return nil, err
	}

	d.publish(p.Username, hub.AccountRegistered, map[string]any{"username": p.Username})
	return p, nil
}

func (d *GormDAO) DeleteAccount(ctx context.Context, username, password string) error {
	err := d.withSession(ctx, "delete account", func(tx *gorm.DB) error {
		row, err := findProfileRow(tx, username)
		if err != nil {
			return err
		}
		if !checkPassword(row.PasswordHash, password) {
			return fmt.Errorf("profile %q: %w", username, domain.ErrInvalidCredentials)
		}
		return deleteProfile(tx, username)
	})
	if err != nil {
		return err
	}

	d.publish(username, hub.AccountDeleted, map[string]any{"username": username})
	return nil
}

func (d *GormDAO) DeleteAccountAsAdmin(ctx context.Context, target, adminUsername, adminPassword string) error {
	err := d.withSession(ctx, "delete account as admin", func(tx *gorm.DB) error {
		admin, err := findProfileRow(tx, adminUsername)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("admin %q: %w", adminUsername, domain.ErrInvalidAdminCredentials)
		}
		if err != nil {
			return err
		}
		if domain.Kind(admin.Kind) != domain.KindAdmin || !checkPassword(admin.PasswordHash, adminPassword) {
			return fmt.Errorf("admin %q: %w", adminUsername, domain.ErrInvalidAdminCredentials)
		}

		if _, err := findProfileRow(tx, target); err != nil {
			return err
		}
		return deleteProfile(tx, target)
	})
	if err != nil {
		return err
	}

	d.publish(target, hub.AccountDeleted, map[string]any{"username": target, "by": adminUsername})
	return nil
}

func (d *GormDAO) UpdateProfile(ctx context.Context, username string, update domain.ProfileUpdate) error {
	if err := update.Validate(); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	var hash string
	if update.Password != "" {
		var err error
		if hash, err = d.hashPassword(update.Password); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	}

	err := d.withSession(ctx, "update profile", func(tx *gorm.DB) error {
		row, err := findProfileRow(tx, username)
		if err != nil {
			return err
		}
		p := row.ToDomain()
		if err := update.Apply(p, hash); err != nil {
			return err
		}

		updated := models.ProfileFromDomain(p)
		updated.CreatedAt = row.CreatedAt
		return tx.Save(&updated).Error
	})
	if err != nil {
		return err
	}

	d.publish(username, hub.AccountUpdated, map[string]any{"username": username})
	return nil
}

func (d *GormDAO) FindProfile(ctx context.Context, username string) (*domain.Profile, error) {
	p, err := loadProfile(d.db.WithContext(ctx), username)
	if err != nil {
		return nil, translate("find profile", err)
	}
	return p, nil
}

func (d *GormDAO) EnsureSeedData(ctx context.Context) error {
	var seeded []string
	err := d.inTx(ctx, "ensure seed data", func(tx *gorm.DB) error {
		seeded = seeded[:0]
		for _, g := range domain.SeedGames() {
			row := models.GameFromDomain(g)
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				log.Printf("Seeded game %d %q", g.ID, g.Title)
			}
		}

		for _, account := range domain.SeedAccounts() {
			exists, err := recordExists(tx, &models.Profile{}, "username = ?", account.Username)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			hash, err := d.hashPassword(account.Password)
			if err != nil {
				return err
			}
			if err := createProfile(tx, account.Profile(hash)); err != nil {
				return err
			}
			seeded = append(seeded, account.Username)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, username := range seeded {
		d.publish(username, hub.AccountRegistered, map[string]any{"username": username, "seed": true})
	}
	return nil
}

func (d *GormDAO) CatalogGames(ctx context.Context) ([]domain.Game, error) {
	var rows []models.Game
	if err := d.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("catalog games", err)
	}
	games := make([]domain.Game, 0, len(rows))
	for _, row := range rows {
		games = append(games, row.ToDomain())
	}
	return games, nil
}
