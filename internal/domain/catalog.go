// Package domain holds the profile, list, catalog and review model shared by
// every store implementation.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform is the hardware family a game (or a review of it) targets.
type Platform string

const (
	PlatformPlayStation Platform = "PLAYSTATION"
	PlatformNintendo    Platform = "NINTENDO"
	PlatformXbox        Platform = "XBOX"
	PlatformPC          Platform = "PC"
	PlatformDefault     Platform = "DEFAULT"
)

// Platforms lists every known platform in declaration order.
func Platforms() []Platform {
	return []Platform{PlatformPlayStation, PlatformNintendo, PlatformXbox, PlatformPC, PlatformDefault}
}

// ParsePlatform maps a case-insensitive name onto a Platform.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms() {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return PlatformDefault, fmt.Errorf("unknown platform %q: %w", s, ErrValidation)
}

// AgeRating is a PEGI classification.
type AgeRating string

const (
	RatingPEGI3   AgeRating = "PEGI3"
	RatingPEGI6   AgeRating = "PEGI6"
	RatingPEGI12  AgeRating = "PEGI12"
	RatingPEGI16  AgeRating = "PEGI16"
	RatingPEGI18  AgeRating = "PEGI18"
	RatingDefault AgeRating = "DEFAULT"
)

// AgeRatings lists every known rating in declaration order.
func AgeRatings() []AgeRating {
	return []AgeRating{RatingPEGI3, RatingPEGI6, RatingPEGI12, RatingPEGI16, RatingPEGI18, RatingDefault}
}

// ParseAgeRating maps a case-insensitive name onto an AgeRating.
func ParseAgeRating(s string) (AgeRating, error) {
	for _, r := range AgeRatings() {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return RatingDefault, fmt.Errorf("unknown age rating %q: %w", s, ErrValidation)
}

// Game is an immutable catalog entry. Lists and reviews refer to it by ID.
type Game struct {
	ID          int
	Title       string
	ReleaseDate time.Time
	Platform    Platform
	Rating      AgeRating
}
