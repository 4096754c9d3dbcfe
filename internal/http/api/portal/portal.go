// Package portal wires the customer portal API surface.
package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/config"
	sessionhttp "github.com/wednesdayfs/helpdesk/internal/http"
	"github.com/wednesdayfs/helpdesk/internal/http/api/portal/handlers"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// RegisterPortalRoutes mounts the customer endpoints under /api/customer.
func RegisterPortalRoutes(r *gin.Engine, cfg *config.Config, auth *service.CustomerAuthService, tickets *service.TicketService) {
	if r == nil {
		return
	}

	group := r.Group("/api/customer")

	authHandler := handlers.NewAuthHandler(auth, cfg)
	group.POST("/request-code", authHandler.RequestCode)
	group.POST("/verify-code", authHandler.VerifyCode)
	group.POST("/logout", authHandler.Logout)

	authed := group.Group("")
	authed.Use(SessionMiddleware(auth))

	ticketHandler := handlers.NewTicketHandler(tickets)
	authed.GET("/tickets", ticketHandler.List)
	authed.POST("/tickets/:id/rating", ticketHandler.SubmitRating)
	authed.POST("/tickets/:id/reopen", ticketHandler.RequestReopen)
}

// SessionMiddleware resolves the customer session cookie to an email and
// aborts with 401 otherwise. The email lands in the gin context under
// "customerEmail". Admin tokens fail here: the codec is shared but the
// customer scope claim is required.
func SessionMiddleware(auth *service.CustomerAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errCookie := c.Cookie(sessionhttp.CustomerCookie)
		if errCookie != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		email, ok := auth.EmailFromSession(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("customerEmail", email)
		c.Next()
	}
}
