package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/startupscout/scout-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, email, password string, userType models.UserType) (string, error)
	Authenticate(username, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	UpdateProfile(id string, update ProfileUpdate) error
}

// ProfileUpdate is the allow-listed partial update payload for PUT
// /user. Pointer fields distinguish "absent" from a zero value; any
// field left nil is not touched. List fields are replaced wholesale,
// never merged.
type ProfileUpdate struct {
	Points        *int `json:"points"`
	ReviewsPosted *int `json:"reviewsPosted"`
	PlacesVisited *int `json:"placesVisited"`
	Favorites     *int `json:"favorites"`

	BookmarkedStartups *[]string `json:"bookmarkedStartups"`
	VisitedStartups    *[]string `json:"visitedStartups"`
	Achievements       *[]string `json:"achievements"`
	VisitedPlaces      *[]string `json:"visitedPlaces"`
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, username, email, password_hash, user_type,
	points, reviews_posted, places_visited, favorites,
	bookmarked_startups_json, visited_startups_json, achievements_json, visited_places_json,
	member_since, created_at, updated_at`

// scanUser is a helper to scan a user from a row or rows object.
func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.UserType,
		&user.Points, &user.ReviewsPosted, &user.PlacesVisited, &user.Favorites,
		&user.BookmarkedStartupsJSON, &user.VisitedStartupsJSON, &user.AchievementsJSON, &user.VisitedPlacesJSON,
		&user.MemberSince, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return user, err
	}
	user.PrepareForAPI() // Unmarshal the list columns
	return user, nil
}

// Register validates the input, rejects duplicate identities and
// inserts the new user with a bcrypt password hash. It returns the
// generated user id.
func (s *UserService) Register(username, email, password string, userType models.UserType) (string, error) {
	if username == "" || email == "" || password == "" || userType == "" {
		return "", &ValidationError{Msg: "all fields are required"}
	}
	if !userType.IsValid() {
		return "", &ValidationError{Msg: fmt.Sprintf("unknown user type %q", userType)}
	}

	var existingID string
	err := s.db.QueryRow("SELECT id FROM users WHERE username = ? OR email = ?", username, email).Scan(&existingID)
	if err == nil {
		return "", ErrConflict
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		UserType:     userType,
	}
	user.PrepareForSave()

	stmt, err := s.db.Prepare(`INSERT INTO users(id, username, email, password_hash, user_type,
		bookmarked_startups_json, visited_startups_json, achievements_json, visited_places_json)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Username, user.Email, user.PasswordHash, user.UserType,
		user.BookmarkedStartupsJSON, user.VisitedStartupsJSON, user.AchievementsJSON, user.VisitedPlacesJSON)
	if err != nil {
		// The pre-check races with concurrent registrations; the unique
		// indexes are the backstop.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", ErrConflict
		}
		return "", err
	}

	return user.ID, nil
}

// Authenticate verifies a user's credentials and returns the profile
// with the password hash stripped. Unknown usernames and wrong
// passwords fail identically.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, &ValidationError{Msg: "username and password are required"}
	}

	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies a partial update to the allow-listed profile
// fields in a single UPDATE statement and refreshes updated_at. Counter
// values must be non-negative.
func (s *UserService) UpdateProfile(id string, update ProfileUpdate) error {
	var setClauses []string
	var args []interface{}

	counters := []struct {
		column string
		value  *int
	}{
		{"points", update.Points},
		{"reviews_posted", update.ReviewsPosted},
		{"places_visited", update.PlacesVisited},
		{"favorites", update.Favorites},
	}
	for _, c := range counters {
		if c.value == nil {
			continue
		}
		if *c.value < 0 {
			return &ValidationError{Msg: fmt.Sprintf("%s must be non-negative", c.column)}
		}
		setClauses = append(setClauses, c.column+" = ?")
		args = append(args, *c.value)
	}

	lists := []struct {
		column string
		value  *[]string
	}{
		{"bookmarked_startups_json", update.BookmarkedStartups},
		{"visited_startups_json", update.VisitedStartups},
		{"achievements_json", update.Achievements},
		{"visited_places_json", update.VisitedPlaces},
	}
	for _, l := range lists {
		if l.value == nil {
			continue
		}
		setClauses = append(setClauses, l.column+" = ?")
		args = append(args, models.MarshalList(*l.value))
	}

	if len(setClauses) == 0 {
		return ErrNoUpdatableFields
	}

	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := "UPDATE users SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"
	_, err := s.db.Exec(query, args...)
	return err
}
