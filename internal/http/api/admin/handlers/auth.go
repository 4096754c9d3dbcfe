package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/errs"
	sessionhttp "github.com/wednesdayfs/helpdesk/internal/http"
	"github.com/wednesdayfs/helpdesk/internal/models"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	svc *service.AdminAuthService
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *service.AdminAuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an allow-listed admin and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	admin, token, errLogin := h.svc.Login(c.Request.Context(), body.Email, body.Password)
	switch {
	case errors.Is(errLogin, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	case errors.Is(errLogin, errs.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters."})
		return
	case errors.Is(errLogin, errs.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	case errLogin != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	sessionhttp.SetSessionCookie(c, sessionhttp.AdminSessionCookie, token, sessionhttp.AdminSessionMaxAge, h.cfg.Production)
	c.JSON(http.StatusOK, gin.H{"success": true, "email": admin.Email})
}

// Logout clears the admin session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionhttp.ClearSessionCookie(c, sessionhttp.AdminSessionCookie, h.cfg.Production)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me reports the authenticated admin's email.
func (h *AuthHandler) Me(c *gin.Context) {
	admin := sessionAdmin(c)
	if admin == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "email": admin.Email})
}

// changePasswordRequest defines the request body for password changes.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the authenticated admin's credential and re-issues
// the session cookie with the new hash embedded.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	admin := sessionAdmin(c)
	if admin == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	token, errChange := h.svc.ChangePassword(c.Request.Context(), admin, body.CurrentPassword, body.NewPassword)
	switch {
	case errors.Is(errChange, errs.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters."})
		return
	case errors.Is(errChange, errs.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid current password"})
		return
	case errChange != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	sessionhttp.SetSessionCookie(c, sessionhttp.AdminSessionCookie, token, sessionhttp.AdminSessionMaxAge, h.cfg.Production)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// forgotPasswordRequest defines the request body for reset requests.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a reset token and emails a reset link. The response
// shape is identical for allow-listed and unknown emails so account existence
// cannot be probed; only a delivery failure after the token is persisted is
// surfaced.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var body forgotPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	errRequest := h.svc.RequestPasswordReset(c.Request.Context(), body.Email)
	switch {
	case errors.Is(errRequest, errs.ErrMailNotConfigured) || errors.Is(errRequest, errs.ErrMailDelivery):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email"})
		return
	case errRequest != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// resetPasswordRequest defines the request body for completing a reset.
type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword consumes a reset token, sets the new password and signs the
// admin in.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body resetPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	_, token, errReset := h.svc.ResetPassword(c.Request.Context(), body.Token, body.Password)
	switch {
	case errors.Is(errReset, errs.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters."})
		return
	case errors.Is(errReset, errs.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	case errReset != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	sessionhttp.SetSessionCookie(c, sessionhttp.AdminSessionCookie, token, sessionhttp.AdminSessionMaxAge, h.cfg.Production)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// sessionAdmin extracts the admin resolved by the session middleware.
func sessionAdmin(c *gin.Context) *models.AdminUser {
	val, exists := c.Get("admin")
	if !exists {
		return nil
	}
	admin, ok := val.(*models.AdminUser)
	if !ok {
		return nil
	}
	return admin
}
