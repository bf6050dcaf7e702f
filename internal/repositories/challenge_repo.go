package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ajibolad/phoneauth/internal/models"
)

const challengePrefix = "challenge:"

type RedisChallengeRepository struct {
	client *redis.Client
}

func NewRedisChallengeRepository(client *redis.Client) *RedisChallengeRepository {
	return &RedisChallengeRepository{client: client}
}

func (r *RedisChallengeRepository) Put(ctx context.Context, challenge *models.Challenge) error {
	jsonData, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	// TTL bounds the prompt window; an expired challenge simply disappears.
	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("challenge already expired")
	}

	key := fmt.Sprintf("%s%s", challengePrefix, challenge.ID)
	if err := r.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set challenge: %w", err)
	}
	return nil
}

func (r *RedisChallengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	key := fmt.Sprintf("%s%s", challengePrefix, id)

	jsonData, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	var challenge models.Challenge
	if err := json.Unmarshal([]byte(jsonData), &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &challenge, nil
}

// Update rewrites the challenge in place, keeping the remaining TTL.
func (r *RedisChallengeRepository) Update(ctx context.Context, challenge *models.Challenge) error {
	jsonData, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	key := fmt.Sprintf("%s%s", challengePrefix, challenge.ID)
	if err := r.client.Set(ctx, key, jsonData, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	return nil
}

func (r *RedisChallengeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("%s%s", challengePrefix, id)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return nil
}
