package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
)

// VerificationStore keeps email codes for addresses that have no account yet.
type VerificationStore interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Verify consumes the code on success. It returns ErrCodeNotRequested when no
	// code is pending and ErrInvalidCode on mismatch or expiry.
	Verify(ctx context.Context, email, code string) error
}

// Purger is implemented by stores that need expired entries removed periodically.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// GenerateCode returns a random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// RedisVerificationStore keeps codes in Redis and lets key expiry handle cleanup.
type RedisVerificationStore struct {
	client *redis.Client
	prefix string
}

// NewRedisVerificationStore constructs RedisVerificationStore.
func NewRedisVerificationStore(client *redis.Client) *RedisVerificationStore {
	return &RedisVerificationStore{client: client, prefix: "unihome:email_code:"}
}

func (s *RedisVerificationStore) key(email string) string {
	return s.prefix + email
}

// Put stores the code with the given lifetime, replacing any earlier one.
func (s *RedisVerificationStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(email), code, ttl).Err()
}

// Verify compares and deletes the stored code.
func (s *RedisVerificationStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, s.key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCodeNotRequested
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrInvalidCode
	}
	return s.client.Del(ctx, s.key(email)).Err()
}

// DBVerificationStore keeps codes in the email_verifications table.
type DBVerificationStore struct {
	db *gorm.DB
}

// NewDBVerificationStore constructs DBVerificationStore.
func NewDBVerificationStore(db *gorm.DB) *DBVerificationStore {
	return &DBVerificationStore{db: db}
}

// Put records a new code. Older pending codes for the address are discarded.
func (s *DBVerificationStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND used_at IS NULL", email).Delete(&models.EmailVerification{}).Error; err != nil {
			return err
		}
		record := models.EmailVerification{
			Email:     email,
			Code:      code,
			ExpiresAt: time.Now().Add(ttl),
		}
		return tx.Create(&record).Error
	})
}

// Verify marks the latest pending code as used when it matches and has not expired.
func (s *DBVerificationStore) Verify(ctx context.Context, email, code string) error {
	var record models.EmailVerification
	err := s.db.WithContext(ctx).
		Where("email = ? AND used_at IS NULL", email).
		Order("id desc").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCodeNotRequested
	}
	if err != nil {
		return err
	}

	if record.Code != code || time.Now().After(record.ExpiresAt) {
		return ErrInvalidCode
	}

	now := time.Now()
	return s.db.WithContext(ctx).Model(&record).Update("used_at", &now).Error
}

// PurgeExpired deletes used records and records past their expiry.
func (s *DBVerificationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&models.EmailVerification{})
	return result.RowsAffected, result.Error
}
