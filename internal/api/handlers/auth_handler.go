package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reelhaven/reelhaven/internal/api/middleware"
	"github.com/reelhaven/reelhaven/internal/gatekeeper"
	"github.com/reelhaven/reelhaven/internal/services"
)

const sessionMaxAge = 24 * 60 * 60

type AuthHandler struct {
	auth         *services.AuthService
	audit        *services.AuditService
	secureCookie bool
}

func NewAuthHandler(auth *services.AuthService, audit *services.AuditService, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, audit: audit, secureCookie: secureCookie}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	ip := clientIP(c)
	token, user, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.audit.LogAccess(nil, ip, "Failed login for "+req.Username, false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	h.setSessionCookie(c, token, sessionMaxAge)
	h.audit.LogAccess(&user.ID, ip, "Logged in", true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUserByID(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session user no longer exists"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.auth.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUsernameTooShort), errors.Is(err, services.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			middleware.GetRequestLogger(c).WithError(err).Error("Registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		}
		return
	}

	h.audit.LogAccess(&user.ID, clientIP(c), "Registered account "+user.Username, true)
	c.JSON(http.StatusCreated, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Old and new passwords are required"})
		return
	}

	err := h.auth.ChangePassword(middleware.UserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		case errors.Is(err, services.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			middleware.GetRequestLogger(c).WithError(err).Error("Password change failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password change failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	mode := http.SameSiteLaxMode
	if h.secureCookie {
		mode = http.SameSiteStrictMode
	}
	c.SetSameSite(mode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
}

// clientIP reads the address the gate resolved for this request.
func clientIP(c *gin.Context) string {
	if v, ok := c.Get(gatekeeper.ClientIPKey); ok {
		if ip, ok := v.(string); ok {
			return ip
		}
	}
	return c.ClientIP()
}
