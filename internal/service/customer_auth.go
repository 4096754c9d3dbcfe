package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/wednesdayfs/helpdesk/internal/config"
	"github.com/wednesdayfs/helpdesk/internal/errs"
	"github.com/wednesdayfs/helpdesk/internal/mailer"
	"github.com/wednesdayfs/helpdesk/internal/models"
	"github.com/wednesdayfs/helpdesk/internal/security"
	"github.com/wednesdayfs/helpdesk/internal/util"
)

const codeExpiry = 10 * time.Minute

// CustomerAuthService owns the passwordless customer session flow: emailed
// one-time codes gated on ticket ownership, one-shot verification and
// customer-scoped stateless sessions.
type CustomerAuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	sender mailer.Sender
}

// NewCustomerAuthService constructs a CustomerAuthService.
func NewCustomerAuthService(db *gorm.DB, cfg *config.Config, sender mailer.Sender) *CustomerAuthService {
	return &CustomerAuthService{db: db, cfg: cfg, sender: sender}
}

// RequestCode issues a 6-digit code to an email that owns at least one
// ticket and mails it. Emails with no tickets are rejected with
// errs.ErrNoTickets; unlike the admin reset flow this deliberately leaks
// existence so the system never emails strangers.
func (s *CustomerAuthService) RequestCode(ctx context.Context, email string) error {
	email = util.NormalizeEmail(email)
	if !util.ValidEmailShape(email) {
		return errs.ErrInvalidEmail
	}

	var ticketCount int64
	if errCount := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("lower(email) = ?", email).
		Count(&ticketCount).Error; errCount != nil {
		return errCount
	}
	if ticketCount == 0 {
		return errs.ErrNoTickets
	}

	code := randomCode()
	token := models.CustomerLoginToken{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(codeExpiry),
	}
	if errCreate := s.db.WithContext(ctx).Create(&token).Error; errCreate != nil {
		return errCreate
	}

	if errSend := s.sender.Send(ctx, mailer.LoginCodeMessage(email, code)); errSend != nil {
		log.Warnf("login code email to %s failed: %v", util.MaskEmail(email), errSend)
		return errSend
	}
	log.Debugf("login code %s issued for %s", util.MaskCode(code), util.MaskEmail(email))
	return nil
}

// VerifyCode consumes the newest unused, unexpired code matching (email,
// code) and returns a customer-scoped session token. A code authorizes
// exactly one session: the used flag flips under a guard on the previous
// value, so concurrent verifications of the same code cannot both succeed.
func (s *CustomerAuthService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	email = util.NormalizeEmail(email)

	var token models.CustomerLoginToken
	errFind := s.db.WithContext(ctx).
		Where("email = ? AND code = ? AND used = ? AND expires_at > ?", email, code, false, time.Now().UTC()).
		Order("created_at DESC").
		First(&token).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", errs.ErrInvalidCode
		}
		return "", errFind
	}

	res := s.db.WithContext(ctx).Model(&models.CustomerLoginToken{}).
		Where("id = ? AND used = ?", token.ID, false).
		Update("used", true)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", errs.ErrInvalidCode
	}

	return security.SignSession(s.cfg.SessionSecret, map[string]string{
		security.ClaimEmail: email,
		security.ClaimScope: security.ScopeCustomer,
	})
}

// EmailFromSession resolves a session token to the lower-cased customer
// email. Tokens missing the customer scope claim are rejected, so an admin
// session can never pass as a customer one even though both use the same
// signing primitive.
func (s *CustomerAuthService) EmailFromSession(token string) (string, bool) {
	claims, ok := security.VerifySession(s.cfg.SessionSecret, token)
	if !ok {
		return "", false
	}
	if claims[security.ClaimScope] != security.ScopeCustomer {
		return "", false
	}
	email := util.NormalizeEmail(claims[security.ClaimEmail])
	if email == "" {
		return "", false
	}
	return email, true
}

// randomCode returns a 6-digit numeric code from crypto/rand.
func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
