package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

// TicketHandler handles admin ticket triage endpoints.
type TicketHandler struct {
	svc *service.TicketService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// List returns every ticket, oldest first.
func (h *TicketHandler) List(c *gin.Context) {
	tickets, errList := h.svc.ListAll(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// setStatusRequest defines the request body for status changes.
type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus transitions a ticket, writing the audit entry and notifying the
// owner on closure.
func (h *TicketHandler) SetStatus(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var body setStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	admin := sessionAdmin(c)
	if admin == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticket, errSet := h.svc.SetStatus(c.Request.Context(), id, body.Status, admin.Email)
	switch {
	case errors.Is(errSet, errs.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	case errors.Is(errSet, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	case errSet != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// setNoteRequest defines the request body for note updates.
type setNoteRequest struct {
	Note string `json:"note"`
}

// SetNote replaces the customer-visible note; a non-empty note is also
// recorded in the audit trail.
func (h *TicketHandler) SetNote(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var body setNoteRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	admin := sessionAdmin(c)
	if admin == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ticket, errSet := h.svc.SetNote(c.Request.Context(), id, body.Note, admin.Email)
	switch {
	case errors.Is(errSet, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	case errSet != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// History returns the merged note/status audit trail, oldest first.
func (h *TicketHandler) History(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	history, errHistory := h.svc.History(c.Request.Context(), id)
	switch {
	case errors.Is(errHistory, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	case errHistory != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func ticketID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
