// Package memory is an in-process dao.DAO for tests. It enforces the same
// invariants as the gorm store through the domain aggregate.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"gamevault/backend/internal/dao"
	"gamevault/backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type state struct {
	profiles map[string]*domain.Profile
	games    map[int]domain.Game
	reviews  map[domain.ReviewKey]domain.Review
}

func (s state) clone() state {
	out := state{
		profiles: make(map[string]*domain.Profile, len(s.profiles)),
		games:    maps.Clone(s.games),
		reviews:  maps.Clone(s.reviews),
	}
	for username, p := range s.profiles {
		out.profiles[username] = p.Clone()
	}
	return out
}

func (s state) profile(username string) (*domain.Profile, error) {
	p, ok := s.profiles[username]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", username, domain.ErrNotFound)
	}
	return p, nil
}

func (s state) game(gameID int) (domain.Game, error) {
	g, ok := s.games[gameID]
	if !ok {
		return domain.Game{}, fmt.Errorf("game %d: %w", gameID, domain.ErrNotFound)
	}
	return g, nil
}

func (s state) deleteProfile(username string) {
	delete(s.profiles, username)
	for key := range s.reviews {
		if key.Username == username {
			delete(s.reviews, key)
		}
	}
}

// Store keeps every profile, game and review in memory behind a mutex.
// Mutations run on a copy of the state that replaces the current one only
// when the mutation succeeds.
type Store struct {
	mu       sync.Mutex
	state    state
	failNext error
}

var _ dao.DAO = (*Store)(nil)

// New returns an empty store. Call EnsureSeedData to load the catalog.
func New() *Store {
	return &Store{state: state{
		profiles: make(map[string]*domain.Profile),
		games:    make(map[int]domain.Game),
		reviews:  make(map[domain.ReviewKey]domain.Review),
	}}
}

// FailNextCall makes the next operation fail with err, or with
// domain.ErrTransactionFailed when err is nil, without touching the state.
func (s *Store) FailNextCall(err error) {
	if err == nil {
		err = domain.ErrTransactionFailed
	}
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

func (s *Store) injected(op string) error {
	if s.failNext == nil {
		return nil
	}
	err := s.failNext
	s.failNext = nil
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) read(op string, fn func(st state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(op); err != nil {
		return err
	}
	if err := fn(s.state); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) write(op string, fn func(st state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(op); err != nil {
		return err
	}
	next := s.state.clone()
	if err := fn(next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.state = next
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w: %v", domain.ErrValidation, err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (*domain.Profile, error) {
	var out *domain.Profile
	err := s.read("authenticate", func(st state) error {
		p, ok := st.profiles[username]
		if !ok || !checkPassword(p.PasswordHash, password) {
			return domain.ErrInvalidCredentials
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

func (s *Store) Register(ctx context.Context, reg domain.Registration) (*domain.Profile, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	hash, err := hashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	p := reg.Profile(hash)
	err = s.write("register", func(st state) error {
		if _, ok := st.profiles[reg.Username]; ok {
			return fmt.Errorf("username %q: %w", reg.Username, domain.ErrDuplicateUsername)
		}
		st.profiles[reg.Username] = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) DeleteAccount(ctx context.Context, username, password string) error {
	return s.write("delete account", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		if !checkPassword(p.PasswordHash, password) {
			return domain.ErrInvalidCredentials
		}
		st.deleteProfile(username)
		return nil
	})
}

func (s *Store) DeleteAccountAsAdmin(ctx context.Context, target, adminUsername, adminPassword string) error {
	return s.write("delete account as admin", func(st state) error {
		admin, ok := st.profiles[adminUsername]
		if !ok || !admin.IsAdmin() || !checkPassword(admin.PasswordHash, adminPassword) {
			return fmt.Errorf("admin %q: %w", adminUsername, domain.ErrInvalidAdminCredentials)
		}
		if _, err := st.profile(target); err != nil {
			return err
		}
		st.deleteProfile(target)
		return nil
	})
}

func (s *Store) UpdateProfile(ctx context.Context, username string, update domain.ProfileUpdate) error {
	if err := update.Validate(); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	var hash string
	if update.Password != "" {
		var err error
		if hash, err = hashPassword(update.Password); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	}
	return s.write("update profile", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		return update.Apply(p, hash)
	})
}

func (s *Store) FindProfile(ctx context.Context, username string) (*domain.Profile, error) {
	var out *domain.Profile
	err := s.read("find profile", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

func (s *Store) EnsureSeedData(ctx context.Context) error {
	return s.write("ensure seed data", func(st state) error {
		for _, g := range domain.SeedGames() {
			if _, ok := st.games[g.ID]; !ok {
				st.games[g.ID] = g
			}
		}
		for _, account := range domain.SeedAccounts() {
			if _, ok := st.profiles[account.Username]; ok {
				continue
			}
			hash, err := hashPassword(account.Password)
			if err != nil {
				return err
			}
			st.profiles[account.Username] = account.Profile(hash)
		}
		return nil
	})
}

func (s *Store) CatalogGames(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	err := s.read("catalog games", func(st state) error {
		games = slices.SortedFunc(maps.Values(st.games), func(a, b domain.Game) int {
			return cmp.Compare(a.ID, b.ID)
		})
		return nil
	})
	return games, err
}

func (s *Store) ListsOf(ctx context.Context, username string) ([]string, error) {
	var names []string
	err := s.read("lists of", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		names = p.ListNames()
		return nil
	})
	return names, err
}

func (s *Store) GamesOf(ctx context.Context, username, listName string) ([]domain.Game, error) {
	var games []domain.Game
	err := s.read("games of", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		games, err = p.GamesIn(listName)
		return err
	})
	return games, err
}

func (s *Store) CreateList(ctx context.Context, username, name string) error {
	if _, err := domain.NormalizeListName(name); err != nil {
		return fmt.Errorf("create list: %w", err)
	}
	return s.write("create list", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		_, err = p.CreateList(name)
		return err
	})
}

func (s *Store) RenameList(ctx context.Context, username, oldName, newName string) error {
	if _, err := domain.NormalizeListName(newName); err != nil {
		return fmt.Errorf("rename list: %w", err)
	}
	return s.write("rename list", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		_, err = p.RenameList(oldName, newName)
		return err
	})
}

func (s *Store) DeleteList(ctx context.Context, username, name string) error {
	return s.write("delete list", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		return p.DeleteList(name)
	})
}

func (s *Store) AddGame(ctx context.Context, username, listName string, gameID int) error {
	return s.write("add game", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		game, err := st.game(gameID)
		if err != nil {
			return err
		}
		return p.AddGame(listName, game)
	})
}

func (s *Store) RemoveGame(ctx context.Context, username, listName string, gameID int) error {
	return s.write("remove game", func(st state) error {
		p, err := st.profile(username)
		if err != nil {
			return err
		}
		_, err = p.RemoveGame(listName, gameID)
		return err
	})
}

func (s *Store) UpsertReview(ctx context.Context, review domain.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return s.write("upsert review", func(st state) error {
		if _, err := st.profile(review.Username); err != nil {
			return err
		}
		game, err := st.game(review.Game.ID)
		if err != nil {
			return err
		}
		review.Game = game
		st.reviews[review.Key()] = review
		return nil
	})
}

func (s *Store) DeleteReview(ctx context.Context, review domain.Review) error {
	return s.write("delete review", func(st state) error {
		delete(st.reviews, review.Key())
		return nil
	})
}

func (s *Store) ReviewsForGame(ctx context.Context, gameID int) ([]domain.Review, error) {
	return s.findReviews("reviews for game", func(r domain.Review) bool { return r.Game.ID == gameID })
}

func (s *Store) AllReviews(ctx context.Context) ([]domain.Review, error) {
	return s.findReviews("all reviews", func(domain.Review) bool { return true })
}

func (s *Store) ReviewFor(ctx context.Context, username string, gameID int) (domain.Review, error) {
	var out domain.Review
	err := s.read("review for", func(st state) error {
		r, ok := st.reviews[domain.ReviewKey{Username: username, GameID: gameID}]
		if !ok {
			return fmt.Errorf("review for %q on game %d: %w", username, gameID, domain.ErrNotFound)
		}
		out = r
		return nil
	})
	return out, err
}

func (s *Store) findReviews(op string, keep func(domain.Review) bool) ([]domain.Review, error) {
	reviews := []domain.Review{}
	err := s.read(op, func(st state) error {
		for _, r := range st.reviews {
			if keep(r) {
				reviews = append(reviews, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(reviews, func(a, b domain.Review) int {
		return cmp.Or(cmp.Compare(a.Game.ID, b.Game.ID), strings.Compare(a.Username, b.Username))
	})
	return reviews, nil
}
