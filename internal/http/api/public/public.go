// Package public wires the unauthenticated submission endpoint.
package public

import (
	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/http/api/public/handlers"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// RegisterPublicRoutes mounts the public endpoints under /api.
func RegisterPublicRoutes(r *gin.Engine, tickets *service.TicketService) {
	if r == nil {
		return
	}
	handler := handlers.NewTicketHandler(tickets)
	r.POST("/api/tickets", handler.Create)
}
