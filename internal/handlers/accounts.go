package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/accounts"
	"storefront/internal/auth"
	"storefront/internal/models"
)

type AuthHandler struct {
	accounts *accounts.Service
	issuer   *auth.Issuer
	secure   bool
	log      logrus.FieldLogger
}

// NewAuthHandler builds the account endpoints. secure marks the token
// cookie HTTPS only.
func NewAuthHandler(svc *accounts.Service, issuer *auth.Issuer, secure bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{accounts: svc, issuer: issuer, secure: secure, log: log.WithField("handler", "auth")}
}

type userView struct {
	ID           uint   `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req accounts.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, accounts.ErrMissingFields):
		errorJSON(c, http.StatusBadRequest, "All fields are required.")
		return
	case errors.Is(err, accounts.ErrPasswordMismatch):
		errorJSON(c, http.StatusBadRequest, "Passwords do not match.")
		return
	case errors.Is(err, accounts.ErrEmailTaken):
		errorJSON(c, http.StatusConflict, "Email already registered.")
		return
	case err != nil:
		serverError(c, h.log, err, "Server error during registration")
		return
	}

	h.signIn(c, u, "Registration successful! Email sent.")
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req accounts.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.accounts.Login(c.Request.Context(), req)
	switch {
	case errors.Is(err, accounts.ErrMissingFields):
		errorJSON(c, http.StatusBadRequest, "Email and password are required.")
		return
	case errors.Is(err, accounts.ErrInvalidCredentials):
		errorJSON(c, http.StatusUnauthorized, "Invalid email or password.")
		return
	case err != nil:
		serverError(c, h.log, err, "Server error during login")
		return
	}

	h.signIn(c, u, "Login successful")
}

func (h *AuthHandler) signIn(c *gin.Context, u *models.User, msg string) {
	token, err := h.issuer.Issue(u.ID, u.Email)
	if err != nil {
		serverError(c, h.log, err, "Failed to issue token")
		return
	}
	auth.SetCookie(c, token, h.issuer, h.secure)
	c.JSON(http.StatusOK, gin.H{
		"message": msg,
		"token":   token,
		"user":    newUserView(u),
	})
}

// Logout handles POST /api/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	auth.ClearCookie(c, h.secure)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

// Me handles GET /api/user. Requires auth.RequireUser.
func (h *AuthHandler) Me(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newUserView(u))
}

// CheckAuth handles GET /api/check-auth. Requires auth.RequireUser.
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedIn": true, "user": newUserView(u)})
}

func (h *AuthHandler) currentUser(c *gin.Context) (*models.User, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		errorJSON(c, http.StatusUnauthorized, "Not logged in")
		return nil, false
	}
	u, err := h.accounts.Get(c.Request.Context(), id)
	if errors.Is(err, accounts.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "User not found")
		return nil, false
	}
	if err != nil {
		serverError(c, h.log, err, "Failed to load user")
		return nil, false
	}
	return u, true
}
