package domain

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// MyGames is the canonical list every profile owns. Every other list of the
// profile holds a subset of its games.
const MyGames = "My Games"

// MaxListNameLength is measured in runes, after trimming.
const MaxListNameLength = 20

// NormalizeListName trims name and checks it against the list naming rules.
func NormalizeListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("list name is empty: %w", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxListNameLength {
		return "", fmt.Errorf("list name %q exceeds %d characters: %w", name, MaxListNameLength, ErrInvalidName)
	}
	return name, nil
}

// lists is the ordered name -> games mapping owned by a Profile. It is never
// handed out; callers get copies.
type lists struct {
	order []string
	games map[string][]Game
}

func newLists() lists {
	return lists{
		order: []string{MyGames},
		games: map[string][]Game{MyGames: nil},
	}
}

func (l lists) clone() lists {
	out := lists{
		order: slices.Clone(l.order),
		games: make(map[string][]Game, len(l.games)),
	}
	for name, games := range l.games {
		out.games[name] = slices.Clone(games)
	}
	return out
}

func (l lists) has(name string) bool {
	_, ok := l.games[name]
	return ok
}

func indexOfGame(games []Game, gameID int) int {
	return slices.IndexFunc(games, func(g Game) bool { return g.ID == gameID })
}

// ListNames returns the profile's list names, "My Games" first and the rest in
// creation order.
func (p *Profile) ListNames() []string {
	return slices.Clone(p.lists.order)
}

// HasList reports whether the profile owns a list with exactly this name.
func (p *Profile) HasList(name string) bool {
	return p.lists.has(strings.TrimSpace(name))
}

// GamesIn returns a copy of the games in the named list, in insertion order.
func (p *Profile) GamesIn(name string) ([]Game, error) {
	name = strings.TrimSpace(name)
	games, ok := p.lists.games[name]
	if !ok {
		return nil, fmt.Errorf("list %q: %w", name, ErrNotFound)
	}
	return slices.Clone(games), nil
}

// OwnsGame reports whether the game is in "My Games".
func (p *Profile) OwnsGame(gameID int) bool {
	return indexOfGame(p.lists.games[MyGames], gameID) >= 0
}

// CreateList registers an empty list and returns the stored (trimmed) name.
func (p *Profile) CreateList(name string) (string, error) {
	name, err := NormalizeListName(name)
	if err != nil {
		return "", err
	}
	if p.lists.has(name) {
		return "", fmt.Errorf("list %q: %w", name, ErrAlreadyExists)
	}
	p.lists.order = append(p.lists.order, name)
	p.lists.games[name] = nil
	return name, nil
}

// RenameList moves every game of oldName under newName, keeping the list's
// position and the order of its games.
func (p *Profile) RenameList(oldName, newName string) (string, error) {
	newName, err := NormalizeListName(newName)
	if err != nil {
		return "", err
	}
	oldName = strings.TrimSpace(oldName)
	if oldName == MyGames {
		return "", fmt.Errorf("list %q cannot be renamed: %w", MyGames, ErrValidation)
	}
	if !p.lists.has(oldName) {
		return "", fmt.Errorf("list %q: %w", oldName, ErrNotFound)
	}
	if p.lists.has(newName) {
		return "", fmt.Errorf("list %q: %w", newName, ErrAlreadyExists)
	}

	p.lists.games[newName] = p.lists.games[oldName]
	delete(p.lists.games, oldName)
	p.lists.order[slices.Index(p.lists.order, oldName)] = newName
	return newName, nil
}

// DeleteList drops a list and its memberships. "My Games" cannot be deleted.
func (p *Profile) DeleteList(name string) error {
	name = strings.TrimSpace(name)
	if name == MyGames {
		return fmt.Errorf("list %q cannot be deleted: %w", MyGames, ErrValidation)
	}
	if !p.lists.has(name) {
		return fmt.Errorf("list %q: %w", name, ErrNotFound)
	}
	delete(p.lists.games, name)
	p.lists.order = slices.DeleteFunc(p.lists.order, func(n string) bool { return n == name })
	return nil
}

// AddGame appends game to the named list. A game already present (same id or
// same title) yields ErrAlreadyExists and leaves the list untouched. Only games
// in "My Games" can be added to another list.
func (p *Profile) AddGame(name string, game Game) error {
	name = strings.TrimSpace(name)
	games, ok := p.lists.games[name]
	if !ok {
		return fmt.Errorf("list %q: %w", name, ErrNotFound)
	}
	for _, g := range games {
		if g.ID == game.ID || g.Title == game.Title {
			return fmt.Errorf("game %q in list %q: %w", game.Title, name, ErrAlreadyExists)
		}
	}
	if name != MyGames && !p.OwnsGame(game.ID) {
		return fmt.Errorf("game %d is not in %q: %w", game.ID, MyGames, ErrNotFound)
	}
	p.lists.games[name] = append(games, game)
	return nil
}

// RemoveGame drops gameID from the named list and returns the names of the
// lists it was removed from. Removing from "My Games" removes it everywhere.
// Removing a game that is not a member is a no-op.
func (p *Profile) RemoveGame(name string, gameID int) ([]string, error) {
	name = strings.TrimSpace(name)
	if !p.lists.has(name) {
		return nil, fmt.Errorf("list %q: %w", name, ErrNotFound)
	}

	targets := []string{name}
	if name == MyGames {
		targets = p.lists.order
	}

	var removed []string
	for _, target := range targets {
		games := p.lists.games[target]
		if i := indexOfGame(games, gameID); i >= 0 {
			p.lists.games[target] = slices.Delete(games, i, i+1)
			removed = append(removed, target)
		}
	}
	return removed, nil
}

// RestoreLists rebuilds the list mapping from persisted rows. names is taken
// in order; "My Games" is always present and first. Sub-list games missing
// from "My Games" are dropped.
func (p *Profile) RestoreLists(names []string, members map[string][]Game) {
	l := newLists()
	for _, name := range names {
		if name == MyGames || l.has(name) {
			continue
		}
		l.order = append(l.order, name)
		l.games[name] = nil
	}
	l.games[MyGames] = slices.Clone(members[MyGames])
	for _, name := range l.order[1:] {
		for _, g := range members[name] {
			if indexOfGame(l.games[MyGames], g.ID) >= 0 {
				l.games[name] = append(l.games[name], g)
			}
		}
	}
	p.lists = l
}
