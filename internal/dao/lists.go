package dao

import (
	"context"
	"fmt"
	"strings"

	"gamevault/backend/internal/domain"
	"gamevault/backend/internal/hub"
	"gamevault/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *GormDAO) ListsOf(ctx context.Context, username string) ([]string, error) {
	p, err := loadProfile(d.db.WithContext(ctx), username)
	if err != nil {
		return nil, translate("lists of", err)
	}
	return p.ListNames(), nil
}

func (d *GormDAO) GamesOf(ctx context.Context, username, listName string) ([]domain.Game, error) {
	p, err := loadProfile(d.db.WithContext(ctx), username)
	if err != nil {
		return nil, translate("games of", err)
	}
	games, err := p.GamesIn(listName)
	if err != nil {
		return nil, translate("games of", err)
	}
	return games, nil
}

func (d *GormDAO) CreateList(ctx context.Context, username, name string) error {
	name, err := domain.NormalizeListName(name)
	if err != nil {
		return fmt.Errorf("create list: %w", err)
	}

	err = d.inTx(ctx, "create list", func(tx *gorm.DB) error {
		p, err := loadProfile(tx, username)
		if err != nil {
			return err
		}
		if _, err := p.CreateList(name); err != nil {
			return err
		}
		position, err := nextPosition(tx, &models.ProfileList{}, "username = ?", username)
		if err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&models.ProfileList{
			Username: username,
			Name:     name,
			Position: position,
		}).Error
	})
	if err != nil {
		return err
	}

	d.publish(username, hub.ListCreated, map[string]any{"name": name})
	return nil
}

func (d *GormDAO) RenameList(ctx context.Context, username, oldName, newName string) error {
	newName, err := domain.NormalizeListName(newName)
	if err != nil {
		return fmt.Errorf("rename list: %w", err)
	}
	oldName = strings.TrimSpace(oldName)

	err = d.inTx(ctx, "rename list", func(tx *gorm.DB) error {
		p, err := loadProfile(tx, username)
		if err != nil {
			return err
		}
		if _, err := p.RenameList(oldName, newName); err != nil {
			return err
		}

		if err := tx.Model(&models.ProfileList{}).
			Where("username = ? AND name = ?", username, oldName).
			Update("name", newName).Error; err != nil {
			return err
		}
		return tx.Model(&models.Listed{}).
			Where("username = ? AND list_name = ?", username, oldName).
			Update("list_name", newName).Error
	})
	if err != nil {
		return err
	}

	d.publish(username, hub.ListRenamed, map[string]any{"from": oldName, "to": newName})
	return nil
}

func (d *GormDAO) DeleteList(ctx context.Context, username, name string) error {
	name = strings.TrimSpace(name)

	err := d.inTx(ctx, "delete list", func(tx *gorm.DB) error {
		p, err := loadProfile(tx, username)
		if err != nil {
			return err
		}
		if err := p.DeleteList(name); err != nil {
			return err
		}

		if err := tx.Where("username = ? AND list_name = ?", username, name).Delete(&models.Listed{}).Error; err != nil {
			return err
		}
		return tx.Where("username = ? AND name = ?", username, name).Delete(&models.ProfileList{}).Error
	})
	if err != nil {
		return err
	}

	d.publish(username, hub.ListDeleted, map[string]any{"name": name})
	return nil
}

func (d *GormDAO) AddGame(ctx context.Context, username, listName string, gameID int) error {
	listName = strings.TrimSpace(listName)

	err := d.inTx(ctx, "add game", func(tx *gorm.DB) error {
		p, err := loadProfile(tx, username)
		if err != nil {
			return err
		}
		game, err := findGame(tx, gameID)
		if err != nil {
			return err
		}
		if err := p.AddGame(listName, game); err != nil {
			return err
		}

		position, err := nextPosition(tx, &models.Listed{}, "username = ? AND list_name = ?", username, listName)
		if err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&models.Listed{
			Username: username,
			GameID:   gameID,
			ListName: listName,
			Position: position,
		}).Error
	})
	if err != nil {
		return err
	}

	d.publish(username, hub.GameAdded, map[string]any{"list": listName, "game_id": gameID})
	return nil
}

func (d *GormDAO) RemoveGame(ctx context.Context, username, listName string, gameID int) error {
	listName = strings.TrimSpace(listName)

	var removed []string
	err := d.inTx(ctx, "remove game", func(tx *gorm.DB) error {
		p, err := loadProfile(tx, username)
		if err != nil {
			return err
		}
		removed, err = p.RemoveGame(listName, gameID)
		if err != nil || len(removed) == 0 {
			return err
		}
		return tx.Where("username = ? AND game_id = ? AND list_name IN ?", username, gameID, removed).
			Delete(&models.Listed{}).Error
	})
	if err != nil {
		return err
	}

	if len(removed) > 0 {
		d.publish(username, hub.GameRemoved, map[string]any{"lists": removed, "game_id": gameID})
	}
	return nil
}
