package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// TicketHandler handles the customer-facing ticket endpoints.
type TicketHandler struct {
	svc *service.TicketService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// List returns the authenticated customer's tickets, oldest first.
func (h *TicketHandler) List(c *gin.Context) {
	email := sessionEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	tickets, errList := h.svc.ListForCustomer(c.Request.Context(), email)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// ratingRequest defines the request body for ticket ratings.
type ratingRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback"`
}

// SubmitRating records a rating on the customer's own CLOSED ticket.
func (h *TicketHandler) SubmitRating(c *gin.Context) {
	email := sessionEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var body ratingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ticket, errRate := h.svc.SubmitRating(c.Request.Context(), id, email, body.Rating, body.Feedback)
	switch {
	case errors.Is(errRate, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	case errors.Is(errRate, errs.ErrTicketNotClosed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket must be CLOSED to rate"})
		return
	case errors.Is(errRate, errs.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be 1-5"})
		return
	case errRate != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// reopenRequest defines the request body for reopen requests.
type reopenRequest struct {
	Reason string `json:"reason"`
}

// RequestReopen moves the customer's CLOSED/REJECTED ticket back to OPEN with
// a stated reason.
func (h *TicketHandler) RequestReopen(c *gin.Context) {
	email := sessionEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var body reopenRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		body.Reason = ""
	}

	errReopen := h.svc.RequestReopen(c.Request.Context(), id, email, body.Reason)
	switch {
	case errors.Is(errReopen, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	case errors.Is(errReopen, errs.ErrTicketActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket is already active."})
		return
	case errors.Is(errReopen, errs.ErrEmptyReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a reason to reopen this ticket."})
		return
	case errors.Is(errReopen, errs.ErrMailNotConfigured) || errors.Is(errReopen, errs.ErrMailDelivery):
		// The reopen itself committed; only the support notification failed.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request reopen."})
		return
	case errReopen != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func sessionEmail(c *gin.Context) string {
	val, exists := c.Get("customerEmail")
	if !exists {
		return ""
	}
	email, _ := val.(string)
	return email
}

func ticketID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
