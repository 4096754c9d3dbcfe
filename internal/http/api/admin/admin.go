// Package admin wires the administrator API surface.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/config"
	sessionhttp "github.com/wednesdayfs/helpdesk/internal/http"
	"github.com/wednesdayfs/helpdesk/internal/http/api/admin/handlers"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// RegisterAdminRoutes mounts the admin endpoints under /api/admin.
func RegisterAdminRoutes(r *gin.Engine, cfg *config.Config, auth *service.AdminAuthService, tickets *service.TicketService) {
	if r == nil {
		return
	}

	group := r.Group("/api/admin")

	authHandler := handlers.NewAuthHandler(auth, cfg)
	group.POST("/login", authHandler.Login)
	group.POST("/logout", authHandler.Logout)
	group.POST("/forgot-password", authHandler.ForgotPassword)
	group.POST("/reset-password", authHandler.ResetPassword)

	authed := group.Group("")
	authed.Use(SessionMiddleware(auth, cfg))
	authed.GET("/me", authHandler.Me)
	authed.POST("/change-password", authHandler.ChangePassword)

	ticketHandler := handlers.NewTicketHandler(tickets)
	authed.GET("/tickets", ticketHandler.List)
	authed.PATCH("/tickets/:id/status", ticketHandler.SetStatus)
	authed.PATCH("/tickets/:id/note", ticketHandler.SetNote)
	authed.GET("/tickets/:id/history", ticketHandler.History)
}

// SessionMiddleware resolves the admin session cookie to a live account and
// aborts with 401 otherwise. The resolved account lands in the gin context
// under "admin".
func SessionMiddleware(auth *service.AdminAuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errCookie := c.Cookie(sessionhttp.AdminSessionCookie)
		if errCookie != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		admin, errSession := auth.CurrentAdmin(c.Request.Context(), token)
		if errSession != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("admin", admin)
		c.Next()
	}
}
