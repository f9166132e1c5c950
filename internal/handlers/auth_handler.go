package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"soundsteps/internal/models"
	"soundsteps/internal/service"
	"soundsteps/internal/validation"

	"golang.org/x/oauth2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  *service.AuthService
	emailService *service.EmailService
	googleOAuth  *oauth2.Config
	appBaseURL   string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, googleOAuth *oauth2.Config, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
		googleOAuth:  googleOAuth,
		appBaseURL:   appBaseURL,
	}
}

// userView is the user shape returned to clients
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	IsGuest  bool   `json:"isGuest"`
}

func viewOf(user *models.User) userView {
	return userView{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsGuest:  user.IsGuest,
	}
}

// authResponse pairs a bearer token with the user it names
type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	token, user, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
			status = http.StatusConflict
		}
		respondWithError(w, status, err.Error(), "Registration failed", err)
		return
	}

	if h.emailService != nil && h.emailService.IsEnabled() {
		// Best effort: a failed welcome email never blocks registration
		go func() {
			if err := h.emailService.SendWelcomeEmail(context.Background(), user.Email, user.Username); err != nil {
				log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
			}
		}()
	}

	respondWithJSON(w, http.StatusCreated, authResponse{Token: token, User: viewOf(user)})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrUsername string `json:"emailOrUsername"`
		Password        string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	token, user, err := h.authService.Login(req.EmailOrUsername, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Login failed", "Login failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse{Token: token, User: viewOf(user)})
}

// Guest handles POST /api/auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	// Body is optional for guest creation
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
			return
		}
	}

	token, user, err := h.authService.CreateGuest(req.Name)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidUsername) || errors.Is(err, service.ErrUsernameNotAllowed) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create guest account", "Guest creation failed", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, authResponse{Token: token, User: viewOf(user)})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, viewOf(user))
}

// RequestPasswordReset handles POST /api/auth/password-reset/request.
// The response is identical whether or not the email exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), h.emailService, req.Email); err != nil {
		log.Printf("Password reset request failed: %v", err)
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent",
	})
}

// ResetPassword handles POST /api/auth/password-reset/confirm
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) || errors.Is(err, validation.ErrWeakPassword) {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to reset password", "Password reset failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
