package models

import (
	"time"

	"gamevault/backend/internal/domain"

	"gorm.io/datatypes"
)

// Game represents a catalog entry. IDs are assigned by the catalog, not the database.
type Game struct {
	ID          int    `gorm:"primaryKey;autoIncrement:false"`
	Title       string `gorm:"size:255;not null"`
	ReleaseDate datatypes.Date
	Platform    string `gorm:"size:20;not null;default:'DEFAULT'"`
	Rating      string `gorm:"size:10;not null;default:'DEFAULT'"`
}

func GameFromDomain(g domain.Game) Game {
	return Game{
		ID:          g.ID,
		Title:       g.Title,
		ReleaseDate: datatypes.Date(g.ReleaseDate),
		Platform:    string(g.Platform),
		Rating:      string(g.Rating),
	}
}

func (g Game) ToDomain() domain.Game {
	return domain.Game{
		ID:          g.ID,
		Title:       g.Title,
		ReleaseDate: time.Time(g.ReleaseDate).UTC(),
		Platform:    domain.Platform(g.Platform),
		Rating:      domain.AgeRating(g.Rating),
	}
}
