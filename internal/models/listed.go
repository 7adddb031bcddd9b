package models

// ProfileList registers one named list of a profile. Position keeps creation
// order so that empty lists survive and ListsOf stays stable.
type ProfileList struct {
	Username string `gorm:"primaryKey;size:50"`
	Name     string `gorm:"primaryKey;size:20"`
	Position int    `gorm:"not null"`

	Profile Profile `gorm:"foreignKey:Username;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Listed is the membership row "game GameID is in list ListName of Username".
// The composite primary key is exactly that triple.
type Listed struct {
	Username string `gorm:"primaryKey;size:50"`
	GameID   int    `gorm:"primaryKey;autoIncrement:false"`
	ListName string `gorm:"primaryKey;size:20"`
	Position int    `gorm:"not null"`

	Profile Profile `gorm:"foreignKey:Username;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Game    Game    `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
}

func (Listed) TableName() string {
	return "listed"
}
