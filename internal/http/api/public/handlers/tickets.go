package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/service"
	"github.com/wednesdayfs/helpdesk/internal/util"
)

// TicketHandler handles public ticket submission.
type TicketHandler struct {
	svc *service.TicketService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// createTicketRequest defines the request body for ticket submission.
type createTicketRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Urgency     int      `json:"urgency"`
	IssueType   string   `json:"issueType"`
	Screenshots []string `json:"screenshots"`
}

// validate returns the names of the fields that fail boundary validation.
func (r createTicketRequest) validate() []string {
	var invalid []string
	if strings.TrimSpace(r.Name) == "" {
		invalid = append(invalid, "name")
	}
	if !util.ValidEmailShape(util.NormalizeEmail(r.Email)) {
		invalid = append(invalid, "email")
	}
	if strings.TrimSpace(r.Subject) == "" {
		invalid = append(invalid, "subject")
	}
	if strings.TrimSpace(r.Description) == "" {
		invalid = append(invalid, "description")
	}
	if strings.TrimSpace(r.Website) == "" {
		invalid = append(invalid, "website")
	}
	return invalid
}

// Create persists a new ticket and notifies the support mailbox. A delivery
// failure after the ticket is committed reports 500 but still carries the
// created ticket, so the submitter does not resubmit.
func (h *TicketHandler) Create(c *gin.Context) {
	var body createTicketRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if invalid := body.validate(); len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": invalid,
		})
		return
	}

	ticket, errCreate := h.svc.Create(c.Request.Context(), service.CreateTicketInput{
		Name:        body.Name,
		Email:       body.Email,
		Subject:     body.Subject,
		Description: body.Description,
		Website:     body.Website,
		Urgency:     body.Urgency,
		IssueType:   body.IssueType,
		Screenshots: body.Screenshots,
	})
	switch {
	case errors.Is(errCreate, errs.ErrMailNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Email not configured. Set SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM.",
			"ticket": ticket,
		})
		return
	case errors.Is(errCreate, errs.ErrMailDelivery):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Email delivery failed. Check SMTP credentials and from address.",
			"ticket": ticket,
		})
		return
	case errCreate != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": ticket})
}
