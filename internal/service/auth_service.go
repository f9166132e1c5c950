package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"soundsteps/internal/models"
	"soundsteps/internal/repository"
	"soundsteps/internal/security"
	"soundsteps/internal/storage"
	"soundsteps/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrUsernameNotAllowed = errors.New("username not allowed")
	ErrInvalidCredentials = errors.New("invalid email/username or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// ProfanityChecker screens words against the bad-words table. Display names
// end up on a public leaderboard in a children's app, so every chosen name
// goes through it. *database.DB satisfies this.
type ProfanityChecker interface {
	IsBadWord(word string) (bool, error)
}

// resetTokenTTL bounds password reset links
const resetTokenTTL = 1 * time.Hour

// AuthService handles registration, login, guest sessions and password resets
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenIssuer
	store    storage.Store
	words    ProfanityChecker
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, store storage.Store, words ProfanityChecker) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		store:    store,
		words:    words,
	}
}

// screenUsername rejects names containing screened words. The full lowered
// name is checked along with each letter run inside it, so a screened word
// padded with digits or punctuation still fails.
func (s *AuthService) screenUsername(username string) error {
	if s.words == nil {
		return nil
	}

	lowered := strings.ToLower(username)
	candidates := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	candidates = append(candidates, lowered)

	for _, word := range candidates {
		bad, err := s.words.IsBadWord(word)
		if err != nil {
			return fmt.Errorf("failed to screen username: %w", err)
		}
		if bad {
			return ErrUsernameNotAllowed
		}
	}
	return nil
}

// Register creates a new user account and returns a bearer token
func (s *AuthService) Register(username, email, password string) (string, *models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return "", nil, err
	}
	if err := s.screenUsername(username); err != nil {
		return "", nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return "", nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", nil, err
	}

	existing, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check existing username: %w", err)
	}
	if existing != nil {
		return "", nil, ErrUsernameTaken
	}

	existing, err = s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return "", nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username, false)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login authenticates by email or username and returns a bearer token
func (s *AuthService) Login(emailOrUsername, password string) (string, *models.User, error) {
	var user *models.User
	var err error

	if strings.Contains(emailOrUsername, "@") {
		user, err = s.userRepo.GetUserByEmail(emailOrUsername)
	} else {
		user, err = s.userRepo.GetUserByUsername(emailOrUsername)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username, false)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// CreateGuest creates a guest account with a sequential display name
// (guest_00001, guest_00002, ...) and returns a bearer token. Guests have
// the same app access as registered users.
func (s *AuthService) CreateGuest(name string) (string, *models.User, error) {
	count, err := s.userRepo.CountGuests()
	if err != nil {
		return "", nil, fmt.Errorf("failed to count guests: %w", err)
	}

	username := fmt.Sprintf("guest_%05d", count+1)
	if name != "" {
		// A chosen display name is held to the same rules as a registered
		// username before it can show up on the leaderboard
		if err := validation.ValidateUsername(name); err != nil {
			return "", nil, err
		}
		if err := s.screenUsername(name); err != nil {
			return "", nil, err
		}
		username = name
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		IsGuest:   true,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return "", nil, fmt.Errorf("failed to create guest: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username, true)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ValidateToken verifies a bearer token and loads the user it names
func (s *AuthService) ValidateToken(token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, security.ErrInvalidToken
	}

	return user, nil
}

// OAuthLogin authenticates or creates a user from an OAuth identity
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (string, *models.User, error) {
	if provider == "" || subject == "" {
		return "", nil, errors.New("missing oauth provider information")
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return "", nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existing, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return "", nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return "", nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return "", nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existing
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			user = &models.User{
				ID:            uuid.New().String(),
				Username:      name,
				Email:         email,
				OAuthProvider: provider,
				OAuthSubject:  subject,
				CreatedAt:     time.Now(),
			}
			if err := s.userRepo.CreateUser(user); err != nil {
				return "", nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Username, false)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// resetKey is the storage key for a password reset token
func resetKey(token string) string {
	return "passwordReset_" + token
}

// RequestPasswordReset creates a reset token and emails a reset link.
// It never reveals whether the email exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailService *EmailService, email string) error {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.IsGuest {
		return nil
	}

	// OAuth-only accounts have no password to reset
	if user.OAuthProvider != "" && user.PasswordHash == "" {
		return nil
	}

	token := uuid.New().String()
	record := models.PasswordResetToken{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.store.Set(resetKey(token), record); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if emailService != nil && emailService.IsEnabled() {
		if err := emailService.SendPasswordResetEmail(ctx, user.Email, user.Username, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	} else {
		log.Printf("Password reset requested for %s (email disabled, token not delivered)", user.Username)
	}

	return nil
}

// ResetPassword sets a new password using a valid, unused, unexpired token
func (s *AuthService) ResetPassword(token, newPassword string) error {
	var record models.PasswordResetToken
	found, err := s.store.Get(resetKey(token), &record)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if !found || record.Used || record.IsExpired() {
		return ErrInvalidResetToken
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(record.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	record.Used = true
	if err := s.store.Set(resetKey(token), record); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}

	return nil
}
