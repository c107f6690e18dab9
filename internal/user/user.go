// Package user holds the end-user model and the in-memory registry that
// fronts the durable user store.
package user

import (
	"strings"
	"time"
)

// GenderNeutral is the catalog key used when the platform profile does
// not expose a gender.
const GenderNeutral = "neutral"

// DefaultLocale is assigned to users whose profile could not be fetched.
const DefaultLocale = "en_US"

// Profile is the subset of the platform profile used for
// personalization.
type Profile struct {
	FirstName string
	LastName  string
	Gender    string
	Locale    string
	Timezone  string
}

// User is one Messenger conversation partner. PSID is immutable and
// unique; every other field may be absent and defaults safely.
type User struct {
	PSID      string
	FirstName string
	LastName  string
	Locale    string
	Timezone  string
	Gender    string

	// Guest marks chat plugin users addressed by user_ref instead of a
	// durable page-scoped id.
	Guest bool

	// Travel profile, filled in over the course of a conversation.
	Occupation            string
	TravelInterests       []string
	BudgetRange           string
	TripType              string
	PreferredDestinations []string
	TravelSeason          string

	LastSeen time.Time
}

// New creates a user with safe defaults for the given identifier.
func New(psid string) *User {
	return &User{
		PSID:   psid,
		Locale: DefaultLocale,
		Gender: GenderNeutral,
	}
}

// SetProfile applies a fetched platform profile, keeping defaults for
// any missing field.
func (u *User) SetProfile(p Profile) {
	if p.FirstName != "" {
		u.FirstName = p.FirstName
	}
	if p.LastName != "" {
		u.LastName = p.LastName
	}
	if p.Gender != "" {
		u.Gender = strings.ToLower(p.Gender)
	}
	if p.Locale != "" {
		u.Locale = p.Locale
	}
	if p.Timezone != "" {
		u.Timezone = p.Timezone
	}
}

// Name returns the best available display name, empty when the profile
// was never hydrated.
func (u *User) Name() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}
