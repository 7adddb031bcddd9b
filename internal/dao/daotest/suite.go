// Package daotest holds the behaviour every dao.DAO implementation must share.
package daotest

import (
	"context"
	"strings"
	"testing"
	"time"

	"gamevault/backend/internal/dao"
	"gamevault/backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Seed catalog ids used by the suite.
const (
	Zelda    = 1
	GodOfWar = 2
	Halo     = 3
	Portal   = 4
)

// Factory returns an empty, ready store. The suite seeds it.
type Factory func(t *testing.T) dao.DAO

// Run exercises newDAO against the full contract. Each subtest gets its own
// seeded store.
func Run(t *testing.T, newDAO Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, d dao.DAO)
	}{
		{"SeedIsIdempotent", testSeedIsIdempotent},
		{"Authenticate", testAuthenticate},
		{"FavoritesScenario", testFavoritesScenario},
		{"CreateList", testCreateList},
		{"RenameList", testRenameList},
		{"DeleteList", testDeleteList},
		{"AddGame", testAddGame},
		{"RemoveGame", testRemoveGame},
		{"Reviews", testReviews},
		{"Register", testRegister},
		{"DeleteAccount", testDeleteAccount},
		{"DeleteAccountAsAdmin", testDeleteAccountAsAdmin},
		{"UpdateProfile", testUpdateProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDAO(t)
			require.NoError(t, d.EnsureSeedData(context.Background()))
			tt.fn(t, d)
		})
	}
}

// GameIDs projects games onto their ids.
func GameIDs(games []domain.Game) []int {
	ids := make([]int, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	assert.True(t, domain.IsKind(err))
}

func newUser(username string) domain.Registration {
	return domain.Registration{
		Username:   username,
		Password:   "s3cret",
		Email:      username + "@example.com",
		Name:       "Test",
		Surname:    "User",
		Telephone:  "600000000",
		Gender:     "F",
		CardNumber: "ES0000000000000000000001",
	}
}

func testSeedIsIdempotent(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Zelda))
	require.NoError(t, d.EnsureSeedData(ctx))

	games, err := d.CatalogGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, GameIDs(games))
	assert.Equal(t, "The Legend of Zelda: Breath of the Wild", games[0].Title)

	// Existing rows are left alone.
	mine, err := d.GamesOf(ctx, "jlopez", domain.MyGames)
	require.NoError(t, err)
	assert.Equal(t, []int{Zelda}, GameIDs(mine))

	for _, account := range domain.SeedAccounts() {
		p, err := d.Authenticate(ctx, account.Username, account.Password)
		require.NoError(t, err, account.Username)
		assert.Equal(t, account.Kind, p.Kind)
	}
}

func testAuthenticate(t *testing.T, d dao.DAO) {
	ctx := context.Background()

	admin, err := d.Authenticate(ctx, "rluna", "zxcvbn")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	require.NotNil(t, admin.Admin)
	assert.Nil(t, admin.User)
	assert.Equal(t, []string{domain.MyGames}, admin.ListNames())

	user, err := d.Authenticate(ctx, "jlopez", "qwerty")
	require.NoError(t, err)
	assert.Equal(t, domain.KindUser, user.Kind)
	require.NotNil(t, user.User)
	assert.Equal(t, "ES9121000418450200051332", user.User.CardNumber)
	assert.NotEqual(t, "qwerty", user.PasswordHash)

	_, err = d.Authenticate(ctx, "rluna", "wrong")
	requireKind(t, err, domain.ErrInvalidCredentials)
	_, err = d.Authenticate(ctx, "nobody", "zxcvbn")
	requireKind(t, err, domain.ErrInvalidCredentials)
}

func testFavoritesScenario(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Zelda))
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Portal))
	require.NoError(t, d.CreateList(ctx, "jlopez", "Favorites"))
	require.NoError(t, d.AddGame(ctx, "jlopez", "Favorites", Portal))
	require.NoError(t, d.AddGame(ctx, "jlopez", "Favorites", Zelda))

	names, err := d.ListsOf(ctx, "jlopez")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.MyGames, "Favorites"}, names)

	favorites, err := d.GamesOf(ctx, "jlopez", "Favorites")
	require.NoError(t, err)
	assert.Equal(t, []int{Portal, Zelda}, GameIDs(favorites))

	// Removing from My Games cascades to every other list.
	require.NoError(t, d.RemoveGame(ctx, "jlopez", domain.MyGames, Zelda))
	favorites, err = d.GamesOf(ctx, "jlopez", "Favorites")
	require.NoError(t, err)
	assert.Equal(t, []int{Portal}, GameIDs(favorites))
	mine, err := d.GamesOf(ctx, "jlopez", domain.MyGames)
	require.NoError(t, err)
	assert.Equal(t, []int{Portal}, GameIDs(mine))

	// Other profiles are untouched.
	other, err := d.GamesOf(ctx, "mgarcia", domain.MyGames)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func testCreateList(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.CreateList(ctx, "jlopez", "  Backlog "))
	require.NoError(t, d.CreateList(ctx, "jlopez", "backlog"))
	require.NoError(t, d.CreateList(ctx, "jlopez", strings.Repeat("ñ", domain.MaxListNameLength)))

	names, err := d.ListsOf(ctx, "jlopez")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.MyGames, "Backlog", "backlog", strings.Repeat("ñ", domain.MaxListNameLength)}, names)

	empty, err := d.GamesOf(ctx, "jlopez", "Backlog")
	require.NoError(t, err)
	assert.Empty(t, empty)

	requireKind(t, d.CreateList(ctx, "jlopez", "Backlog"), domain.ErrAlreadyExists)
	requireKind(t, d.CreateList(ctx, "jlopez", domain.MyGames), domain.ErrAlreadyExists)
	requireKind(t, d.CreateList(ctx, "jlopez", "   "), domain.ErrInvalidName)
	requireKind(t, d.CreateList(ctx, "jlopez", strings.Repeat("x", domain.MaxListNameLength+1)), domain.ErrInvalidName)
	requireKind(t, d.CreateList(ctx, "nobody", "Backlog"), domain.ErrNotFound)

	_, err = d.ListsOf(ctx, "nobody")
	requireKind(t, err, domain.ErrNotFound)
	_, err = d.GamesOf(ctx, "jlopez", "Missing")
	requireKind(t, err, domain.ErrNotFound)
}

func testRenameList(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Halo))
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, GodOfWar))
	require.NoError(t, d.CreateList(ctx, "jlopez", "Favorites"))
	require.NoError(t, d.CreateList(ctx, "jlopez", "Backlog"))
	require.NoError(t, d.AddGame(ctx, "jlopez", "Favorites", Halo))
	require.NoError(t, d.AddGame(ctx, "jlopez", "Favorites", GodOfWar))

	require.NoError(t, d.RenameList(ctx, "jlopez", "Favorites", "Top"))

	names, err := d.ListsOf(ctx, "jlopez")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.MyGames, "Top", "Backlog"}, names)
	top, err := d.GamesOf(ctx, "jlopez", "Top")
	require.NoError(t, err)
	assert.Equal(t, []int{Halo, GodOfWar}, GameIDs(top))
	_, err = d.GamesOf(ctx, "jlopez", "Favorites")
	requireKind(t, err, domain.ErrNotFound)

	requireKind(t, d.RenameList(ctx, "jlopez", "Top", "Backlog"), domain.ErrAlreadyExists)
	requireKind(t, d.RenameList(ctx, "jlopez", "Top", "Top"), domain.ErrAlreadyExists)
	requireKind(t, d.RenameList(ctx, "jlopez", "Missing", "Other"), domain.ErrNotFound)
	requireKind(t, d.RenameList(ctx, "jlopez", domain.MyGames, "Mine"), domain.ErrValidation)
	requireKind(t, d.RenameList(ctx, "jlopez", "Top", ""), domain.ErrInvalidName)

	// Failed renames change nothing.
	names, err = d.ListsOf(ctx, "jlopez")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.MyGames, "Top", "Backlog"}, names)
}

func testDeleteList(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.AddGame(ctx, "mgarcia", domain.MyGames, Zelda))
	require.NoError(t, d.CreateList(ctx, "mgarcia", "Done"))
	require.NoError(t, d.AddGame(ctx, "mgarcia", "Done", Zelda))

	require.NoError(t, d.DeleteList(ctx, "mgarcia", "Done"))

	names, err := d.ListsOf(ctx, "mgarcia")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.MyGames}, names)
	mine, err := d.GamesOf(ctx, "mgarcia", domain.MyGames)
	require.NoError(t, err)
	assert.Equal(t, []int{Zelda}, GameIDs(mine))

	requireKind(t, d.DeleteList(ctx, "mgarcia", "Done"), domain.ErrNotFound)
	requireKind(t, d.DeleteList(ctx, "mgarcia", domain.MyGames), domain.ErrValidation)

	// The name is free again and the new list starts empty.
	require.NoError(t, d.CreateList(ctx, "mgarcia", "Done"))
	done, err := d.GamesOf(ctx, "mgarcia", "Done")
	require.NoError(t, err)
	assert.Empty(t, done)
}

func testAddGame(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.CreateList(ctx, "jlopez", "Favorites"))

	requireKind(t, d.AddGame(ctx, "jlopez", "Favorites", Zelda), domain.ErrNotFound)

	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Zelda))
	requireKind(t, d.AddGame(ctx, "jlopez", domain.MyGames, Zelda), domain.ErrAlreadyExists)
	require.NoError(t, d.AddGame(ctx, "jlopez", "Favorites", Zelda))
	requireKind(t, d.AddGame(ctx, "jlopez", "Favorites", Zelda), domain.ErrAlreadyExists)

	requireKind(t, d.AddGame(ctx, "jlopez", domain.MyGames, 999), domain.ErrNotFound)
	requireKind(t, d.AddGame(ctx, "jlopez", "Missing", Zelda), domain.ErrNotFound)
	requireKind(t, d.AddGame(ctx, "nobody", domain.MyGames, Zelda), domain.ErrNotFound)

	mine, err := d.GamesOf(ctx, "jlopez", domain.MyGames)
	require.NoError(t, err)
	assert.Equal(t, []int{Zelda}, GameIDs(mine))
	favorites, err := d.GamesOf(ctx, "jlopez", "Favorites")
	require.NoError(t, err)
	assert.Equal(t, []int{Zelda}, GameIDs(favorites))
	assert.Equal(t, mine[0], favorites[0])
}

func testRemoveGame(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Zelda))
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Halo))
	require.NoError(t, d.CreateList(ctx, "jlopez", "Favorites"))
	require.NoError(t, d.AddGame(ctx, "jlopez", "Favorites", Halo))

	// Removing from a sub-list leaves My Games alone.
	require.NoError(t, d.RemoveGame(ctx, "jlopez", "Favorites", Halo))
	mine, err := d.GamesOf(ctx, "jlopez", domain.MyGames)
	require.NoError(t, err)
	assert.Equal(t, []int{Zelda, Halo}, GameIDs(mine))

	// Non-members are a no-op.
	require.NoError(t, d.RemoveGame(ctx, "jlopez", "Favorites", Halo))
	require.NoError(t, d.RemoveGame(ctx, "jlopez", domain.MyGames, Portal))

	requireKind(t, d.RemoveGame(ctx, "jlopez", "Missing", Zelda), domain.ErrNotFound)
	requireKind(t, d.RemoveGame(ctx, "nobody", domain.MyGames, Zelda), domain.ErrNotFound)
}

func testReviews(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	day := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	zelda := domain.Game{ID: Zelda}

	review := domain.Review{
		Username:    "mgarcia",
		Game:        zelda,
		Score:       7,
		Description: "Great exploration",
		Date:        day,
		Platform:    domain.PlatformNintendo,
	}
	require.NoError(t, d.UpsertReview(ctx, review))
	require.NoError(t, d.UpsertReview(ctx, domain.Review{Username: "jlopez", Game: zelda, Score: 10, Date: day, Platform: domain.PlatformNintendo}))
	require.NoError(t, d.UpsertReview(ctx, domain.Review{Username: "jlopez", Game: domain.Game{ID: Halo}, Score: 5, Date: day, Platform: domain.PlatformXbox}))

	got, err := d.ReviewFor(ctx, "mgarcia", Zelda)
	require.NoError(t, err)
	assert.Equal(t, "7/10", got.FormattedScore())
	assert.Equal(t, "Great exploration", got.Description)
	assert.Equal(t, domain.PlatformNintendo, got.Platform)
	assert.Equal(t, "The Legend of Zelda: Breath of the Wild", got.Game.Title)
	assert.True(t, day.Equal(got.Date))

	// A second upsert for the same pair replaces the first.
	review.Score = 9
	review.Description = "Even better the second time"
	require.NoError(t, d.UpsertReview(ctx, review))
	got, err = d.ReviewFor(ctx, "mgarcia", Zelda)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Score)
	assert.Equal(t, "Even better the second time", got.Description)

	forZelda, err := d.ReviewsForGame(ctx, Zelda)
	require.NoError(t, err)
	require.Len(t, forZelda, 2)
	assert.Equal(t, "jlopez", forZelda[0].Username)
	assert.Equal(t, "mgarcia", forZelda[1].Username)

	all, err := d.AllReviews(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []domain.ReviewKey{
		{Username: "jlopez", GameID: Zelda},
		{Username: "mgarcia", GameID: Zelda},
		{Username: "jlopez", GameID: Halo},
	}, []domain.ReviewKey{all[0].Key(), all[1].Key(), all[2].Key()})

	none, err := d.ReviewsForGame(ctx, Portal)
	require.NoError(t, err)
	assert.Empty(t, none)

	requireKind(t, d.UpsertReview(ctx, domain.Review{Username: "mgarcia", Game: zelda, Score: 11}), domain.ErrValidation)
	requireKind(t, d.UpsertReview(ctx, domain.Review{Username: "mgarcia", Game: zelda, Score: -1}), domain.ErrValidation)
	requireKind(t, d.UpsertReview(ctx, domain.Review{Game: zelda, Score: 5}), domain.ErrValidation)
	requireKind(t, d.UpsertReview(ctx, domain.Review{Username: "mgarcia", Game: domain.Game{ID: 999}, Score: 5}), domain.ErrNotFound)
	requireKind(t, d.UpsertReview(ctx, domain.Review{Username: "nobody", Game: zelda, Score: 5}), domain.ErrNotFound)

	require.NoError(t, d.DeleteReview(ctx, review))
	_, err = d.ReviewFor(ctx, "mgarcia", Zelda)
	requireKind(t, err, domain.ErrNotFound)
	require.NoError(t, d.DeleteReview(ctx, review))
}

func testRegister(t *testing.T, d dao.DAO) {
	ctx := context.Background()

	p, err := d.Register(ctx, newUser("alice"))
	require.NoError(t, err)
	assert.Equal(t, domain.KindUser, p.Kind)
	assert.Equal(t, []string{domain.MyGames}, p.ListNames())

	authed, err := d.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", authed.Email)
	assert.Equal(t, "ES0000000000000000000001", authed.User.CardNumber)
	assert.Equal(t, []string{domain.MyGames}, authed.ListNames())

	_, err = d.Register(ctx, newUser("alice"))
	requireKind(t, err, domain.ErrDuplicateUsername)
	_, err = d.Register(ctx, newUser("rluna"))
	requireKind(t, err, domain.ErrDuplicateUsername)

	bad := newUser("bob")
	bad.CardNumber = "ES12"
	_, err = d.Register(ctx, bad)
	requireKind(t, err, domain.ErrValidation)
	_, err = d.Register(ctx, newUser("has space"))
	requireKind(t, err, domain.ErrValidation)
	for _, email := range []string{"@", "a@", "@b", "a b@c"} {
		reg := newUser("carol")
		reg.Email = email
		_, err = d.Register(ctx, reg)
		requireKind(t, err, domain.ErrValidation)
	}
	_, err = d.FindProfile(ctx, "bob")
	requireKind(t, err, domain.ErrNotFound)
}

func testDeleteAccount(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Zelda))
	require.NoError(t, d.CreateList(ctx, "jlopez", "Favorites"))
	require.NoError(t, d.UpsertReview(ctx, domain.Review{Username: "jlopez", Game: domain.Game{ID: Zelda}, Score: 8}))

	requireKind(t, d.DeleteAccount(ctx, "jlopez", "wrong"), domain.ErrInvalidCredentials)
	_, err := d.FindProfile(ctx, "jlopez")
	require.NoError(t, err)

	require.NoError(t, d.DeleteAccount(ctx, "jlopez", "qwerty"))
	_, err = d.FindProfile(ctx, "jlopez")
	requireKind(t, err, domain.ErrNotFound)
	_, err = d.ListsOf(ctx, "jlopez")
	requireKind(t, err, domain.ErrNotFound)
	reviews, err := d.AllReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	requireKind(t, d.DeleteAccount(ctx, "jlopez", "qwerty"), domain.ErrNotFound)

	// The username can be registered again from scratch.
	p, err := d.Register(ctx, newUser("jlopez"))
	require.NoError(t, err)
	assert.Equal(t, []string{domain.MyGames}, p.ListNames())
	mine, err := d.GamesOf(ctx, "jlopez", domain.MyGames)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func testDeleteAccountAsAdmin(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.UpsertReview(ctx, domain.Review{Username: "mgarcia", Game: domain.Game{ID: Halo}, Score: 3}))

	requireKind(t, d.DeleteAccountAsAdmin(ctx, "mgarcia", "rluna", "wrong"), domain.ErrInvalidAdminCredentials)
	requireKind(t, d.DeleteAccountAsAdmin(ctx, "mgarcia", "jlopez", "qwerty"), domain.ErrInvalidAdminCredentials)
	requireKind(t, d.DeleteAccountAsAdmin(ctx, "mgarcia", "nobody", "zxcvbn"), domain.ErrInvalidAdminCredentials)
	requireKind(t, d.DeleteAccountAsAdmin(ctx, "nobody", "rluna", "zxcvbn"), domain.ErrNotFound)

	require.NoError(t, d.DeleteAccountAsAdmin(ctx, "mgarcia", "rluna", "zxcvbn"))
	_, err := d.FindProfile(ctx, "mgarcia")
	requireKind(t, err, domain.ErrNotFound)
	reviews, err := d.ReviewsForGame(ctx, Halo)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	_, err = d.FindProfile(ctx, "jlopez")
	require.NoError(t, err)
}

func testUpdateProfile(t *testing.T, d dao.DAO) {
	ctx := context.Background()
	require.NoError(t, d.AddGame(ctx, "jlopez", domain.MyGames, Portal))

	update := domain.ProfileUpdate{
		Email:      "jl@example.com",
		Name:       "Jorge",
		Surname:    "López",
		Telephone:  "611111111",
		Gender:     "M",
		CardNumber: "ES1111111111111111111111",
	}
	require.NoError(t, d.UpdateProfile(ctx, "jlopez", update))

	p, err := d.Authenticate(ctx, "jlopez", "qwerty")
	require.NoError(t, err, "empty password keeps the stored hash")
	assert.Equal(t, "jl@example.com", p.Email)
	assert.Equal(t, "López", p.Surname)
	assert.Equal(t, "ES1111111111111111111111", p.User.CardNumber)
	mine, err := p.GamesIn(domain.MyGames)
	require.NoError(t, err)
	assert.Equal(t, []int{Portal}, GameIDs(mine))

	update.Password = "n3w"
	require.NoError(t, d.UpdateProfile(ctx, "jlopez", update))
	_, err = d.Authenticate(ctx, "jlopez", "qwerty")
	requireKind(t, err, domain.ErrInvalidCredentials)
	_, err = d.Authenticate(ctx, "jlopez", "n3w")
	require.NoError(t, err)

	bad := update
	bad.CardNumber = "nope"
	requireKind(t, d.UpdateProfile(ctx, "jlopez", bad), domain.ErrValidation)
	p, err = d.FindProfile(ctx, "jlopez")
	require.NoError(t, err)
	assert.Equal(t, "ES1111111111111111111111", p.User.CardNumber)

	requireKind(t, d.UpdateProfile(ctx, "nobody", update), domain.ErrNotFound)

	// Malformed input is rejected before the profile is even looked up.
	requireKind(t, d.UpdateProfile(ctx, "nobody", domain.ProfileUpdate{Email: "not-an-email"}), domain.ErrValidation)
	requireKind(t, d.UpdateProfile(ctx, "rluna", domain.ProfileUpdate{CardNumber: "nope"}), domain.ErrValidation)
	bad = update
	bad.Email = "a@"
	requireKind(t, d.UpdateProfile(ctx, "jlopez", bad), domain.ErrValidation)

	// Users cannot drop their card number.
	bad = update
	bad.CardNumber = ""
	requireKind(t, d.UpdateProfile(ctx, "jlopez", bad), domain.ErrValidation)

	// Admins ignore user-only fields and keep their variant.
	require.NoError(t, d.UpdateProfile(ctx, "rluna", domain.ProfileUpdate{
		Email:          "rluna@example.com",
		Gender:         "F",
		CurrentAccount: "ES2222222222222222222222",
	}))
	admin, err := d.Authenticate(ctx, "rluna", "zxcvbn")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "ES2222222222222222222222", admin.Admin.CurrentAccount)
	assert.Nil(t, admin.User)
}
