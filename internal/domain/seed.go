package domain

import "time"

// SeedAccount is a default account created on first start. Password is plain
// text and gets hashed by the store.
type SeedAccount struct {
	Registration
	Kind           Kind
	CurrentAccount string
}

// Profile builds the seed profile with the given password hash.
func (s SeedAccount) Profile(passwordHash string) *Profile {
	if s.Kind != KindAdmin {
		return s.Registration.Profile(passwordHash)
	}
	p := NewAdmin(s.Username, AdminDetails{CurrentAccount: s.CurrentAccount})
	p.PasswordHash = passwordHash
	p.Email = s.Email
	p.Name = s.Name
	p.Surname = s.Surname
	p.Telephone = s.Telephone
	return p
}

// SeedAccounts returns the default accounts keyed by username.
func SeedAccounts() []SeedAccount {
	return []SeedAccount{
		{
			Kind:           KindAdmin,
			CurrentAccount: "ES7620770024003102575766",
			Registration: Registration{
				Username:  "rluna",
				Password:  "zxcvbn",
				Email:     "rluna@gamevault.dev",
				Name:      "Raquel",
				Surname:   "Luna",
				Telephone: "600111222",
			},
		},
		{
			Kind: KindUser,
			Registration: Registration{
				Username:   "jlopez",
				Password:   "qwerty",
				Email:      "jlopez@gamevault.dev",
				Name:       "Javier",
				Surname:    "Lopez",
				Telephone:  "600333444",
				Gender:     "M",
				CardNumber: "ES9121000418450200051332",
			},
		},
		{
			Kind: KindUser,
			Registration: Registration{
				Username:   "mgarcia",
				Password:   "asdfgh",
				Email:      "mgarcia@gamevault.dev",
				Name:       "Marta",
				Surname:    "Garcia",
				Telephone:  "600555666",
				Gender:     "F",
				CardNumber: "ES6000491500051234567892",
			},
		},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SeedGames returns the default catalog keyed by game id.
func SeedGames() []Game {
	return []Game{
		{ID: 1, Title: "The Legend of Zelda: Breath of the Wild", ReleaseDate: date(2017, time.March, 3), Platform: PlatformNintendo, Rating: RatingPEGI12},
		{ID: 2, Title: "God of War", ReleaseDate: date(2018, time.April, 20), Platform: PlatformPlayStation, Rating: RatingPEGI18},
		{ID: 3, Title: "Halo Infinite", ReleaseDate: date(2021, time.December, 8), Platform: PlatformXbox, Rating: RatingPEGI16},
		{ID: 4, Title: "Portal 2", ReleaseDate: date(2011, time.April, 19), Platform: PlatformPC, Rating: RatingPEGI12},
		{ID: 5, Title: "Mario Kart 8 Deluxe", ReleaseDate: date(2017, time.April, 28), Platform: PlatformNintendo, Rating: RatingPEGI3},
	}
}
