package repository

import (
	"database/sql"
	"time"

	"soundsteps/internal/database"
	"soundsteps/internal/models"
)

// UserRepository handles user account database operations
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user record
func (r *UserRepository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, is_guest, oauth_provider, oauth_subject, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsGuest,
		user.OAuthProvider,
		user.OAuthSubject,
		user.CreatedAt,
	)
	return err
}

// GetUserByID retrieves a user by id, nil if not found
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	return r.getUserWhere("id = ?", id)
}

// GetUserByEmail retrieves a user by email, nil if not found
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	return r.getUserWhere("email = ?", email)
}

// GetUserByUsername retrieves a user by username, nil if not found
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	return r.getUserWhere("username = ?", username)
}

// GetUserByOAuth retrieves a user by oauth provider and subject, nil if not found
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	return r.getUserWhere("oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

func (r *UserRepository) getUserWhere(where string, args ...interface{}) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, is_guest, oauth_provider, oauth_subject, created_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	var email, passwordHash, oauthProvider, oauthSubject sql.NullString
	var createdAt time.Time

	err := r.db.QueryRow(query, args...).Scan(
		&user.ID,
		&user.Username,
		&email,
		&passwordHash,
		&user.IsGuest,
		&oauthProvider,
		&oauthSubject,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Email = email.String
	user.PasswordHash = passwordHash.String
	user.OAuthProvider = oauthProvider.String
	user.OAuthSubject = oauthSubject.String
	user.CreatedAt = createdAt

	return user, nil
}

// LinkOAuthProvider attaches an oauth identity to an existing user
func (r *UserRepository) LinkOAuthProvider(userID, provider, subject string) error {
	query := "UPDATE users SET oauth_provider = ?, oauth_subject = ? WHERE id = ?"
	_, err := r.db.Exec(query, provider, subject, userID)
	return err
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID, passwordHash string) error {
	query := "UPDATE users SET password_hash = ? WHERE id = ?"
	_, err := r.db.Exec(query, passwordHash, userID)
	return err
}

// CountGuests returns the number of guest accounts, used to generate
// sequential guest display names
func (r *UserRepository) CountGuests() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE is_guest = ?", true).Scan(&count)
	return count, err
}
