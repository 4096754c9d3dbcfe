package public

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/db"
	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/mailer"
	"github.com/wednesdayfs/helpdesk/internal/models"
	"github.com/wednesdayfs/helpdesk/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubSender struct {
	sent []mailer.Message
	fail error
}

func (s *stubSender) Send(_ context.Context, msg mailer.Message) error {
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newRouter(t *testing.T, sender mailer.Sender) (*gin.Engine, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "helpdesk.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	raw := `session-secret: unit-test-secret
database-dsn: unused.db
admin-emails:
  - admin@chmoney.co.uk
`
	if err := os.WriteFile(cfgPath, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	router := gin.New()
	RegisterPublicRoutes(router, service.NewTicketService(conn, cfg, sender))
	return router, conn
}

func submit(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validBody() gin.H {
	return gin.H{
		"name":        "Alice",
		"email":       "alice@example.com",
		"subject":     "Broken checkout",
		"description": "The checkout page errors out.",
		"website":     "shop.example.com",
		"urgency":     4,
		"issueType":   "WEBSITE",
	}
}

func TestCreateTicketValidation(t *testing.T) {
	router, conn := newRouter(t, &stubSender{})

	rec := submit(t, router, gin.H{"email": "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]bool{"name": true, "email": true, "subject": true, "description": true, "website": true}
	if len(resp.Fields) != len(want) {
		t.Fatalf("fields = %v", resp.Fields)
	}
	for _, field := range resp.Fields {
		if !want[field] {
			t.Fatalf("unexpected field %q in %v", field, resp.Fields)
		}
	}

	var count int64
	if err := conn.Model(&models.Ticket{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("invalid submission created %d tickets", count)
	}
}

func TestCreateTicketSuccess(t *testing.T) {
	sender := &stubSender{}
	router, conn := newRouter(t, sender)

	rec := submit(t, router, validBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool          `json:"success"`
		Ticket  models.Ticket `json:"ticket"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("success = false")
	}
	if resp.Ticket.Status != models.StatusOpen {
		t.Fatalf("status = %q, want OPEN", resp.Ticket.Status)
	}
	if resp.Ticket.IssueType != models.IssueTypeWebsite {
		t.Fatalf("issue type = %q, want WEBSITE", resp.Ticket.IssueType)
	}

	var count int64
	if err := conn.Model(&models.Ticket{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("tickets = %d, want 1", count)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sender.sent))
	}
}

func TestCreateTicketMailFailureKeepsTicket(t *testing.T) {
	router, conn := newRouter(t, &stubSender{fail: errs.ErrMailNotConfigured})

	rec := submit(t, router, validBody())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp struct {
		Error  string         `json:"error"`
		Ticket *models.Ticket `json:"ticket"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Ticket == nil {
		t.Fatal("response lacks the created ticket")
	}

	// The ticket survives the delivery failure so the submitter does not
	// resubmit.
	var count int64
	if err := conn.Model(&models.Ticket{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("tickets = %d, want 1", count)
	}
}
