package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

const (
	verificationSubject = "UniHome邮箱验证码"
	verificationBody    = "您的UniHome注册验证码为：%s，5分钟内有效。"
)

// AccountService handles email registration and password login.
type AccountService struct {
	db     *gorm.DB
	codes  VerificationStore
	mailer Mailer
	ttl    time.Duration
}

// NewAccountService constructs AccountService.
func NewAccountService(db *gorm.DB, codes VerificationStore, mailer Mailer, ttl time.Duration) *AccountService {
	return &AccountService{db: db, codes: codes, mailer: mailer, ttl: ttl}
}

// SendCode issues a verification code for email and mails it. Codes for known
// users are stored on the user row; the rest go to the verification store.
func (s *AccountService) SendCode(ctx context.Context, email string) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		expires := time.Now().Add(s.ttl)
		if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
			"email_code":         code,
			"email_code_expires": &expires,
		}).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.codes.Put(ctx, email, code, s.ttl); err != nil {
			return err
		}
	default:
		return err
	}

	if err := s.mailer.Send(email, verificationSubject, fmt.Sprintf(verificationBody, code)); err != nil {
		log.Printf("[Mail] failed to send verification code to %s: %v", email, err)
		return ErrMailDelivery
	}
	return nil
}

// Register checks the code and sets the password, creating the account when the
// email is new. The account is marked verified.
func (s *AccountService) Register(ctx context.Context, email, code, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, hashErr := utils.HashPassword(password)
	if hashErr != nil {
		return nil, hashErr
	}

	if err == nil {
		if user.EmailCode == "" || user.EmailCodeExpires == nil {
			return nil, ErrCodeNotRequested
		}
		if user.EmailCode != code || time.Now().After(*user.EmailCodeExpires) {
			return nil, ErrInvalidCode
		}

		if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
			"password_hash":      hash,
			"email_verified":     true,
			"email_code":         "",
			"email_code_expires": nil,
		}).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	if err := s.codes.Verify(ctx, email, code); err != nil {
		return nil, err
	}

	user = models.User{
		Username:      email,
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the password of a verified account.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return &user, nil
}
