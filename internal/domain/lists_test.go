package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	zelda = Game{ID: 1, Title: "Zelda", Platform: PlatformNintendo, Rating: RatingPEGI12}
	halo  = Game{ID: 3, Title: "Halo", Platform: PlatformXbox, Rating: RatingPEGI16}
)

func newTestUser() *Profile {
	return NewUser("jlopez", UserDetails{CardNumber: "ES9121000418450200051332"})
}

func TestNewProfileOwnsMyGames(t *testing.T) {
	p := newTestUser()
	assert.Equal(t, []string{MyGames}, p.ListNames())

	games, err := p.GamesIn(MyGames)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestNormalizeListName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "Favorites", want: "Favorites"},
		{name: "trimmed", in: "  Backlog ", want: "Backlog"},
		{name: "exactly twenty", in: strings.Repeat("a", 20), want: strings.Repeat("a", 20)},
		{name: "empty", in: "", wantErr: ErrInvalidName},
		{name: "blank", in: "   ", wantErr: ErrInvalidName},
		{name: "too long", in: strings.Repeat("a", 21), wantErr: ErrInvalidName},
		{name: "multibyte within limit", in: strings.Repeat("ñ", 20), want: strings.Repeat("ñ", 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeListName(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateListRejectsDuplicates(t *testing.T) {
	p := newTestUser()
	_, err := p.CreateList("Favorites")
	require.NoError(t, err)

	_, err = p.CreateList("Favorites")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	_, err = p.CreateList(MyGames)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// case-sensitive
	_, err = p.CreateList("favorites")
	require.NoError(t, err)
	assert.Equal(t, []string{MyGames, "Favorites", "favorites"}, p.ListNames())
}

func TestAddGameKeepsSubListsInsideMyGames(t *testing.T) {
	p := newTestUser()
	_, err := p.CreateList("Favorites")
	require.NoError(t, err)

	err = p.AddGame("Favorites", zelda)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, p.AddGame(MyGames, zelda))
	require.NoError(t, p.AddGame("Favorites", zelda))

	err = p.AddGame("Favorites", zelda)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	sameTitle := Game{ID: 99, Title: zelda.Title}
	err = p.AddGame(MyGames, sameTitle)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = p.AddGame("Nope", zelda)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFromMyGamesCascades(t *testing.T) {
	p := newTestUser()
	_, err := p.CreateList("Favorites")
	require.NoError(t, err)
	require.NoError(t, p.AddGame(MyGames, zelda))
	require.NoError(t, p.AddGame(MyGames, halo))
	require.NoError(t, p.AddGame("Favorites", zelda))

	removed, err := p.RemoveGame(MyGames, zelda.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{MyGames, "Favorites"}, removed)

	favorites, err := p.GamesIn("Favorites")
	require.NoError(t, err)
	assert.Empty(t, favorites)

	mine, err := p.GamesIn(MyGames)
	require.NoError(t, err)
	assert.Equal(t, []Game{halo}, mine)

	removed, err = p.RemoveGame("Favorites", halo.ID)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestRenameList(t *testing.T) {
	p := newTestUser()
	for _, name := range []string{"A", "B"} {
		_, err := p.CreateList(name)
		require.NoError(t, err)
	}
	require.NoError(t, p.AddGame(MyGames, zelda))
	require.NoError(t, p.AddGame("A", zelda))

	got, err := p.RenameList("A", " C ")
	require.NoError(t, err)
	assert.Equal(t, "C", got)
	assert.Equal(t, []string{MyGames, "C", "B"}, p.ListNames())

	games, err := p.GamesIn("C")
	require.NoError(t, err)
	assert.Equal(t, []Game{zelda}, games)
	_, err = p.GamesIn("A")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.RenameList("C", "C")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	_, err = p.RenameList("C", "B")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	_, err = p.RenameList("missing", "D")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.RenameList(MyGames, "Owned")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = p.RenameList("C", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestDeleteList(t *testing.T) {
	p := newTestUser()
	_, err := p.CreateList("Backlog")
	require.NoError(t, err)

	assert.ErrorIs(t, p.DeleteList(MyGames), ErrValidation)
	assert.ErrorIs(t, p.DeleteList("missing"), ErrNotFound)
	require.NoError(t, p.DeleteList("Backlog"))
	assert.Equal(t, []string{MyGames}, p.ListNames())
}

func TestCloneIsIndependent(t *testing.T) {
	p := newTestUser()
	require.NoError(t, p.AddGame(MyGames, zelda))

	c := p.Clone()
	_, err := c.RemoveGame(MyGames, zelda.ID)
	require.NoError(t, err)
	c.User.Gender = "F"

	assert.True(t, p.OwnsGame(zelda.ID))
	assert.Empty(t, p.User.Gender)
}

func TestRestoreListsDropsOrphanedMembers(t *testing.T) {
	p := newTestUser()
	p.RestoreLists([]string{"Favorites", MyGames, "Backlog"}, map[string][]Game{
		MyGames:     {zelda},
		"Favorites": {zelda, halo},
	})

	assert.Equal(t, []string{MyGames, "Favorites", "Backlog"}, p.ListNames())
	favorites, err := p.GamesIn("Favorites")
	require.NoError(t, err)
	assert.Equal(t, []Game{zelda}, favorites)
}
