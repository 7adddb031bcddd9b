package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinScore = 0
	MaxScore = 10
)

// Review is a profile's single rating of a game. (Username, Game.ID) is its
// identity; saving another review for the same pair replaces it.
type Review struct {
	Username    string
	Game        Game
	Score       int
	Description string
	Date        time.Time
	// Platform the review was written for. The same title may ship on
	// several platforms, so this is independent of Game.Platform.
	Platform Platform
}

// ReviewKey identifies a review.
type ReviewKey struct {
	Username string
	GameID   int
}

// Key returns the review's identity.
func (r Review) Key() ReviewKey {
	return ReviewKey{Username: r.Username, GameID: r.Game.ID}
}

// Validate checks the identity and score range.
func (r Review) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("review has no author: %w", ErrValidation)
	}
	if r.Score < MinScore || r.Score > MaxScore {
		return fmt.Errorf("score %d outside [%d,%d]: %w", r.Score, MinScore, MaxScore, ErrValidation)
	}
	return nil
}

// FormattedScore renders the score as "<score>/10".
func (r Review) FormattedScore() string {
	return fmt.Sprintf("%d/%d", r.Score, MaxScore)
}
