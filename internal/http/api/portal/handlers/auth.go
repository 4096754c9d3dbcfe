package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/errs"
	sessionhttp "github.com/wednesdayfs/helpdesk/internal/http"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// AuthHandler handles the passwordless customer login endpoints.
type AuthHandler struct {
	svc *service.CustomerAuthService
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *service.CustomerAuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

// requestCodeRequest defines the request body for code issuance.
type requestCodeRequest struct {
	Email string `json:"email"`
}

// RequestCode emails a one-time code to an address that owns tickets. The
// 404 for unknown emails is deliberate: the system never emails an address
// with no relationship to it, at the cost of leaking ticket existence.
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var body requestCodeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	errRequest := h.svc.RequestCode(c.Request.Context(), body.Email)
	switch {
	case errors.Is(errRequest, errs.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email required"})
		return
	case errors.Is(errRequest, errs.ErrNoTickets):
		c.JSON(http.StatusNotFound, gin.H{"error": "No tickets found for this email"})
		return
	case errors.Is(errRequest, errs.ErrMailNotConfigured) || errors.Is(errRequest, errs.ErrMailDelivery):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	case errRequest != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// verifyCodeRequest defines the request body for code verification.
type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyCode consumes a one-time code and sets the customer session cookie.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var body verifyCodeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	code := strings.TrimSpace(body.Code)
	if email == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and code required"})
		return
	}

	token, errVerify := h.svc.VerifyCode(c.Request.Context(), email, code)
	switch {
	case errors.Is(errVerify, errs.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired code"})
		return
	case errVerify != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	sessionhttp.SetSessionCookie(c, sessionhttp.CustomerCookie, token, sessionhttp.CustomerCookieMaxAge, h.cfg.Production)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the customer session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionhttp.ClearSessionCookie(c, sessionhttp.CustomerCookie, h.cfg.Production)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
