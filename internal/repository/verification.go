package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"fashionai/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerificationStore keeps the most recent emailed code per address.
// Get returns "" with a nil error when no live code exists.
type VerificationStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

func verificationKey(email string) string {
	return "verify:" + strings.ToLower(email)
}

type redisVerificationStore struct {
	rdb *redis.Client
}

// NewRedisVerificationStore stores codes as Redis keys with native TTL.
func NewRedisVerificationStore(rdb *redis.Client) VerificationStore {
	return &redisVerificationStore{rdb: rdb}
}

func (s *redisVerificationStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, verificationKey(email), code, ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *redisVerificationStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.rdb.Get(ctx, verificationKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return code, nil
}

func (s *redisVerificationStore) Delete(ctx context.Context, email string) error {
	if err := s.rdb.Del(ctx, verificationKey(email)).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

type dbVerificationStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDBVerificationStore stores codes in the verification_codes table.
// Expired rows are ignored on read and overwritten on the next Save.
func NewDBVerificationStore(db *gorm.DB) VerificationStore {
	return &dbVerificationStore{db: db, now: time.Now}
}

func (s *dbVerificationStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	row := models.VerificationCode{
		Email:     strings.ToLower(email),
		Code:      code,
		ExpiresAt: s.now().Add(ttl),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *dbVerificationStore) Get(ctx context.Context, email string) (string, error) {
	var row models.VerificationCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND expires_at > ?", strings.ToLower(email), s.now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return row.Code, nil
}

func (s *dbVerificationStore) Delete(ctx context.Context, email string) error {
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		Delete(&models.VerificationCode{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
