package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajibolad/phoneauth/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByPhone(ctx context.Context, phoneNumber string) (*models.Account, error)
	Exists(ctx context.Context, phoneNumber string) (bool, error)
	SetLastLogin(ctx context.Context, phoneNumber string, lastLoginAt time.Time) error
	Delete(ctx context.Context, phoneNumber string) error
}

type ChallengeRepository interface {
	Put(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	Update(ctx context.Context, challenge *models.Challenge) error
	Delete(ctx context.Context, id uuid.UUID) error
}
