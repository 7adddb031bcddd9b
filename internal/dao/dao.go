// Package dao defines the data-access contracts for profiles, lists and
// reviews, and their gorm-backed transactional implementation.
//
// Every operation fails with one of the domain error kinds (match them with
// errors.Is). Storage driver errors are never exposed.
package dao

import (
	"context"

	"gamevault/backend/internal/domain"
)

// AccountStore manages profile lifecycle and the catalog.
type AccountStore interface {
	// Authenticate returns the profile, lists loaded, when username and
	// password match a user or an admin. Any mismatch is ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*domain.Profile, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.Profile, error)
	DeleteAccount(ctx context.Context, username, password string) error
	DeleteAccountAsAdmin(ctx context.Context, target, adminUsername, adminPassword string) error
	UpdateProfile(ctx context.Context, username string, update domain.ProfileUpdate) error
	FindProfile(ctx context.Context, username string) (*domain.Profile, error)
	// EnsureSeedData inserts the default accounts and catalog rows that are
	// missing. Existing rows are left untouched.
	EnsureSeedData(ctx context.Context) error
	CatalogGames(ctx context.Context) ([]domain.Game, error)
}

// ListStore manages a profile's named game lists.
type ListStore interface {
	ListsOf(ctx context.Context, username string) ([]string, error)
	GamesOf(ctx context.Context, username, listName string) ([]domain.Game, error)
	CreateList(ctx context.Context, username, name string) error
	RenameList(ctx context.Context, username, oldName, newName string) error
	DeleteList(ctx context.Context, username, name string) error
	AddGame(ctx context.Context, username, listName string, gameID int) error
	RemoveGame(ctx context.Context, username, listName string, gameID int) error
}

// ReviewStore manages reviews, one per (profile, game).
type ReviewStore interface {
	UpsertReview(ctx context.Context, review domain.Review) error
	DeleteReview(ctx context.Context, review domain.Review) error
	ReviewsForGame(ctx context.Context, gameID int) ([]domain.Review, error)
	AllReviews(ctx context.Context) ([]domain.Review, error)
	ReviewFor(ctx context.Context, username string, gameID int) (domain.Review, error)
}

// DAO is the full data-access surface.
type DAO interface {
	AccountStore
	ListStore
	ReviewStore
}
