package models

import (
	"time"

	"gamevault/backend/internal/domain"
)

// Profile is a user or admin account. Kind discriminates the variant; the
// variant-only columns stay empty for the other kind.
type Profile struct {
	Username     string `gorm:"primaryKey;size:50;not null"`
	Kind         string `gorm:"size:10;not null;default:'user';index"`
	PasswordHash string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255"`
	Name         string `gorm:"size:100"`
	Surname      string `gorm:"size:100"`
	Telephone    string `gorm:"size:30"`

	// User only
	Gender     string `gorm:"size:20"`
	CardNumber string `gorm:"size:24"`

	// Admin only
	CurrentAccount string `gorm:"size:34"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileFromDomain maps a domain profile onto its row. Lists are stored separately.
func ProfileFromDomain(p *domain.Profile) Profile {
	row := Profile{
		Username:     p.Username,
		Kind:         string(p.Kind),
		PasswordHash: p.PasswordHash,
		Email:        p.Email,
		Name:         p.Name,
		Surname:      p.Surname,
		Telephone:    p.Telephone,
	}
	switch p.Kind {
	case domain.KindUser:
		if p.User != nil {
			row.Gender = p.User.Gender
			row.CardNumber = p.User.CardNumber
		}
	case domain.KindAdmin:
		if p.Admin != nil {
			row.CurrentAccount = p.Admin.CurrentAccount
		}
	}
	return row
}

// ToDomain rebuilds the profile without its lists; callers restore them from
// ProfileList and Listed rows.
func (r Profile) ToDomain() *domain.Profile {
	var p *domain.Profile
	if domain.Kind(r.Kind) == domain.KindAdmin {
		p = domain.NewAdmin(r.Username, domain.AdminDetails{CurrentAccount: r.CurrentAccount})
	} else {
		p = domain.NewUser(r.Username, domain.UserDetails{Gender: r.Gender, CardNumber: r.CardNumber})
	}
	p.PasswordHash = r.PasswordHash
	p.Email = r.Email
	p.Name = r.Name
	p.Surname = r.Surname
	p.Telephone = r.Telephone
	return p
}
