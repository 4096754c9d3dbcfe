package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
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

const (
	minPasswordLength = 8
	resetTokenExpiry  = 60 * time.Minute
)

// AdminAuthService owns the administrator session state machine: allow-listed
// password login with first-run bootstrap, stateless cookie sessions that
// embed the live password hash, and the change/forgot/reset password flows.
type AdminAuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	sender mailer.Sender
}

// NewAdminAuthService constructs an AdminAuthService.
func NewAdminAuthService(db *gorm.DB, cfg *config.Config, sender mailer.Sender) *AdminAuthService {
	return &AdminAuthService{db: db, cfg: cfg, sender: sender}
}

// Login authenticates an allow-listed admin and returns a session token.
//
// The allow-list is checked before any store lookup so unlisted emails get the
// same generic rejection whether or not a row exists, and no row is ever
// created for them. The first successful login of an allow-listed email with
// no existing row creates the account with the supplied password.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*models.AdminUser, string, error) {
	email = util.NormalizeEmail(email)
	if !s.cfg.AllowedAdmin(email) {
		return nil, "", errs.ErrUnauthorized
	}
	if len(password) < minPasswordLength {
		return nil, "", errs.ErrPasswordTooShort
	}

	var admin models.AdminUser
	errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	switch {
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		hash, errHash := security.HashPassword(password)
		if errHash != nil {
			return nil, "", errHash
		}
		admin = models.AdminUser{Email: email, PasswordHash: hash}
		if errCreate := s.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
			return nil, "", errCreate
		}
		log.Infof("admin account bootstrapped for %s", util.MaskEmail(email))
	case errFind != nil:
		return nil, "", errFind
	default:
		if !security.CheckPassword(admin.PasswordHash, password) {
			return nil, "", errs.ErrInvalidCredentials
		}
	}

	token, errSign := s.sessionToken(admin.Email, admin.PasswordHash)
	if errSign != nil {
		return nil, "", errSign
	}
	return &admin, token, nil
}

// CurrentAdmin resolves a session token to a live admin account. Any failure
// along the way (bad token, unlisted email, missing row, stale hash claim)
// yields errs.ErrUnauthorized, never a distinguishable error. Because the
// token embeds the password hash, changing the password invalidates every
// previously issued session on its next lookup.
func (s *AdminAuthService) CurrentAdmin(ctx context.Context, token string) (*models.AdminUser, error) {
	claims, ok := security.VerifySession(s.cfg.SessionSecret, token)
	if !ok {
		return nil, errs.ErrUnauthorized
	}
	email := claims[security.ClaimEmail]
	hash := claims[security.ClaimHash]
	if email == "" || hash == "" {
		return nil, errs.ErrUnauthorized
	}
	if !s.cfg.AllowedAdmin(email) {
		return nil, errs.ErrUnauthorized
	}

	var admin models.AdminUser
	if errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; errFind != nil {
		return nil, errs.ErrUnauthorized
	}
	if admin.PasswordHash != hash {
		return nil, errs.ErrUnauthorized
	}
	return &admin, nil
}

// ChangePassword verifies the current password, stores a new hash and returns
// a fresh session token embedding it (the old token is now self-invalidating).
func (s *AdminAuthService) ChangePassword(ctx context.Context, admin *models.AdminUser, current, next string) (string, error) {
	if len(next) < minPasswordLength {
		return "", errs.ErrPasswordTooShort
	}
	if !security.CheckPassword(admin.PasswordHash, current) {
		return "", errs.ErrInvalidCredentials
	}

	hash, errHash := security.HashPassword(next)
	if errHash != nil {
		return "", errHash
	}
	if errUpdate := s.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("id = ?", admin.ID).
		Update("password_hash", hash).Error; errUpdate != nil {
		return "", errUpdate
	}
	admin.PasswordHash = hash
	return s.sessionToken(admin.Email, hash)
}

// RequestPasswordReset issues a one-shot reset token and emails a reset link.
//
// It reports success for any email outside the allow-list so account existence
// cannot be probed. For allow-listed emails without a row, one is created with
// a placeholder credential that can never verify; the reset completes the
// account. A delivery failure is returned to the caller, but the token has
// already been persisted and stays valid for its full window.
func (s *AdminAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = util.NormalizeEmail(email)
	if !s.cfg.AllowedAdmin(email) {
		return nil
	}

	var admin models.AdminUser
	errFind := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	switch {
	case errors.Is(errFind, gorm.ErrRecordNotFound):
		admin = models.AdminUser{Email: email, PasswordHash: randomHex(16)}
		if errCreate := s.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
			return errCreate
		}
	case errFind != nil:
		return errFind
	}

	reset := models.AdminResetToken{
		Token:       randomHex(24),
		AdminUserID: admin.ID,
		ExpiresAt:   time.Now().UTC().Add(resetTokenExpiry),
	}
	if errCreate := s.db.WithContext(ctx).Create(&reset).Error; errCreate != nil {
		return errCreate
	}

	resetURL := fmt.Sprintf("%s/admin/reset-password?token=%s", s.cfg.PublicBaseURL, reset.Token)
	if errSend := s.sender.Send(ctx, mailer.ResetLinkMessage(email, resetURL)); errSend != nil {
		log.Warnf("reset email to %s failed: %v", util.MaskEmail(email), errSend)
		return errSend
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password. The hash
// update and the used flag commit in one transaction, so a token can never
// authorize a second reset even if the process dies between the two writes.
func (s *AdminAuthService) ResetPassword(ctx context.Context, token, password string) (*models.AdminUser, string, error) {
	if len(password) < minPasswordLength {
		return nil, "", errs.ErrPasswordTooShort
	}

	var reset models.AdminResetToken
	if errFind := s.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, "", errs.ErrInvalidResetToken
		}
		return nil, "", errFind
	}
	if reset.Used || reset.ExpiresAt.Before(time.Now().UTC()) {
		return nil, "", errs.ErrInvalidResetToken
	}

	var admin models.AdminUser
	if errFind := s.db.WithContext(ctx).First(&admin, reset.AdminUserID).Error; errFind != nil {
		return nil, "", errs.ErrInvalidResetToken
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return nil, "", errHash
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUpdate := tx.Model(&models.AdminUser{}).
			Where("id = ?", admin.ID).
			Update("password_hash", hash).Error; errUpdate != nil {
			return errUpdate
		}
		// Guard against a concurrent reset racing the same token: only one
		// transaction gets to flip used from false to true.
		res := tx.Model(&models.AdminResetToken{}).
			Where("id = ? AND used = ?", reset.ID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrInvalidResetToken
		}
		return nil
	})
	if errTx != nil {
		return nil, "", errTx
	}

	admin.PasswordHash = hash
	sessionToken, errSign := s.sessionToken(admin.Email, hash)
	if errSign != nil {
		return nil, "", errSign
	}
	return &admin, sessionToken, nil
}

func (s *AdminAuthService) sessionToken(email, hash string) (string, error) {
	return security.SignSession(s.cfg.SessionSecret, map[string]string{
		security.ClaimEmail: email,
		security.ClaimHash:  hash,
	})
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process cannot mint any credential.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
