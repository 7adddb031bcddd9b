package models

import (
	"time"

	"gamevault/backend/internal/domain"

	"gorm.io/datatypes"
)

// Review is keyed by (Username, GameID): one review per profile and game.
type Review struct {
	Username    string `gorm:"primaryKey;size:50"`
	GameID      int    `gorm:"primaryKey;autoIncrement:false"`
	Score       int    `gorm:"not null;check:score >= 0 AND score <= 10"`
	Description string `gorm:"type:text"`
	ReviewDate  datatypes.Date
	Platform    string `gorm:"size:20;not null;default:'DEFAULT'"`

	Profile Profile `gorm:"foreignKey:Username;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Game    Game    `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
}

func ReviewFromDomain(r domain.Review) Review {
	return Review{
		Username:    r.Username,
		GameID:      r.Game.ID,
		Score:       r.Score,
		Description: r.Description,
		ReviewDate:  datatypes.Date(r.Date),
		Platform:    string(r.Platform),
	}
}

// ToDomain expects Game to be preloaded.
func (r Review) ToDomain() domain.Review {
	return domain.Review{
		Username:    r.Username,
		Game:        r.Game.ToDomain(),
		Score:       r.Score,
		Description: r.Description,
		Date:        time.Time(r.ReviewDate).UTC(),
		Platform:    domain.Platform(r.Platform),
	}
}
