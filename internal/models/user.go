package models

import (
	"encoding/json"
	"time"
)

// UserType classifies an account. It is a closed set: registration
// rejects anything outside the constants below.
type UserType string

const (
	UserTypeTraveler UserType = "traveler"
	UserTypeFounder  UserType = "founder"
	UserTypeInvestor UserType = "investor"
)

// IsValid reports whether the value is one of the known account types.
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeTraveler, UserTypeFounder, UserTypeInvestor:
		return true
	}
	return false
}

// User represents a user account in the system.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"` // Never expose this to the client
	UserType     UserType `json:"userType"`

	Points        int `json:"points"`
	ReviewsPosted int `json:"reviewsPosted"`
	PlacesVisited int `json:"placesVisited"`
	Favorites     int `json:"favorites"`

	// JSON string fields for DB storage
	BookmarkedStartupsJSON string `json:"-"`
	VisitedStartupsJSON    string `json:"-"`
	AchievementsJSON       string `json:"-"`
	VisitedPlacesJSON      string `json:"-"`

	// Slice fields for API interaction
	BookmarkedStartups []string `json:"bookmarkedStartups"`
	VisitedStartups    []string `json:"visitedStartups"`
	Achievements       []string `json:"achievements"`
	VisitedPlaces      []string `json:"visitedPlaces"`

	MemberSince time.Time `json:"memberSince"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PrepareForSave marshals the slice fields into their respective JSON
// strings for DB storage. A nil slice is stored as an empty list, never
// as null — the list columns must always hold valid JSON arrays.
func (u *User) PrepareForSave() {
	u.BookmarkedStartupsJSON = MarshalList(u.BookmarkedStartups)
	u.VisitedStartupsJSON = MarshalList(u.VisitedStartups)
	u.AchievementsJSON = MarshalList(u.Achievements)
	u.VisitedPlacesJSON = MarshalList(u.VisitedPlaces)
}

// PrepareForAPI unmarshals the JSON string fields into their respective
// slice fields for API responses. Slices come out non-nil so clients
// always see [] rather than null.
func (u *User) PrepareForAPI() {
	u.BookmarkedStartups = unmarshalList(u.BookmarkedStartupsJSON)
	u.VisitedStartups = unmarshalList(u.VisitedStartupsJSON)
	u.Achievements = unmarshalList(u.AchievementsJSON)
	u.VisitedPlaces = unmarshalList(u.VisitedPlacesJSON)
}

func MarshalList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func unmarshalList(raw string) []string {
	list := []string{}
	if raw != "" {
		json.Unmarshal([]byte(raw), &list)
	}
	return list
}
