// Package http holds the pieces shared by every API surface: session cookie
// attributes and the error-response vocabulary.
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
)

// Session cookie names and lifetimes. Both cookies are HTTP-only,
// SameSite=Lax, Path=/ and Secure in production.
const (
	AdminSessionCookie   = "admin_session"
	AdminSessionMaxAge   = 60 * 60 * 24
	CustomerCookie       = "customer_session"
	CustomerCookieMaxAge = 60 * 30
)

// SetSessionCookie writes a session cookie with the shared attributes.
func SetSessionCookie(c *gin.Context, name, token string, maxAge int, secure bool) {
	c.SetSameSite(nethttp.SameSiteLaxMode)
	c.SetCookie(name, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie expires a session cookie immediately.
func ClearSessionCookie(c *gin.Context, name string, secure bool) {
	c.SetSameSite(nethttp.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", secure, true)
}
