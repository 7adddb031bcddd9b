package dao

import (
	"context"
	"errors"
	"fmt"

	"gamevault/backend/internal/domain"
	"gamevault/backend/internal/hub"
	"gamevault/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *GormDAO) UpsertReview(ctx context.Context, review domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}

	err := d.inTx(ctx, "upsert review", func(tx *gorm.DB) error {
		if _, err := findProfileRow(tx, review.Username); err != nil {
			return err
		}
		if _, err := findGame(tx, review.Game.ID); err != nil {
			return err
		}

		row := models.ReviewFromDomain(review)
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}, {Name: "game_id"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		return err
	}

	d.publish(review.Username, hub.ReviewUpserted, map[string]any{
		"game_id": review.Game.ID,
		"score":   review.FormattedScore(),
	})
	return nil
}

func (d *GormDAO) DeleteReview(ctx context.Context, review domain.Review) error {
	var deleted int64
	err := d.inTx(ctx, "delete review", func(tx *gorm.DB) error {
		result := tx.Where("username = ? AND game_id = ?", review.Username, review.Game.ID).Delete(&models.Review{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return err
	}

	if deleted > 0 {
		d.publish(review.Username, hub.ReviewDeleted, map[string]any{"game_id": review.Game.ID})
	}
	return nil
}

func (d *GormDAO) ReviewsForGame(ctx context.Context, gameID int) ([]domain.Review, error) {
	return findReviews("reviews for game", d.db.WithContext(ctx).Where("game_id = ?", gameID))
}

func (d *GormDAO) AllReviews(ctx context.Context) ([]domain.Review, error) {
	return findReviews("all reviews", d.db.WithContext(ctx))
}

func (d *GormDAO) ReviewFor(ctx context.Context, username string, gameID int) (domain.Review, error) {
	var row models.Review
	err := d.db.WithContext(ctx).Preload("Game").
		First(&row, "username = ? AND game_id = ?", username, gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Review{}, fmt.Errorf("review for %q on game %d: %w", username, gameID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Review{}, translate("review for", err)
	}
	return row.ToDomain(), nil
}

// findReviews runs a prepared query over reviews, ordered by game then author.
func findReviews(op string, query *gorm.DB) ([]domain.Review, error) {
	var rows []models.Review
	err := query.Preload("Game").
		Order("game_id, username").
		Find(&rows).Error
	if err != nil {
		return nil, translate(op, err)
	}

	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.ToDomain())
	}
	return reviews, nil
}
