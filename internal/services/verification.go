package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/ajibolad/phoneauth/internal/models"
	"github.com/ajibolad/phoneauth/internal/repositories"
	"github.com/ajibolad/phoneauth/internal/sms"
	"github.com/ajibolad/phoneauth/internal/utils"
)

var ErrChallengeNotFound = errors.New("challenge not found or expired")

type SubmitOutcome string

const (
	SubmitAccepted  SubmitOutcome = "accepted"
	SubmitWrongCode SubmitOutcome = "wrong_code"
	SubmitRejected  SubmitOutcome = "rejected"
)

type SubmitResult struct {
	Outcome      SubmitOutcome
	PhoneNumber  string
	AttemptsLeft int
}

// VerificationEngine issues one-time codes and adjudicates submissions
// against them within a bounded attempt budget. All of its state lives on
// the challenge record; nothing survives past login.
type VerificationEngine struct {
	challenges  repositories.ChallengeRepository
	sender      sms.Sender
	codeLength  int
	maxAttempts int
	codeTTL     time.Duration
}

func NewVerificationEngine(
	challenges repositories.ChallengeRepository,
	sender sms.Sender,
	codeLength int,
	maxAttempts int,
	codeTTL time.Duration,
) *VerificationEngine {
	return &VerificationEngine{
		challenges:  challenges,
		sender:      sender,
		codeLength:  codeLength,
		maxAttempts: maxAttempts,
		codeTTL:     codeTTL,
	}
}

// Issue generates a code, stores its hash with a fresh attempt budget, and
// dispatches the plaintext to the phone number. A failed dispatch removes
// the challenge again so nothing half-issued can be submitted against.
func (e *VerificationEngine) Issue(ctx context.Context, phoneNumber string) (*models.Challenge, error) {
	code, err := generateCode(e.codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	codeHash, err := utils.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash code: %w", err)
	}

	now := time.Now().UTC()
	challenge := &models.Challenge{
		ID:           uuid.New(),
		PhoneNumber:  phoneNumber,
		CodeHash:     codeHash,
		AttemptsLeft: e.maxAttempts,
		ExpiresAt:    now.Add(e.codeTTL),
		CreatedAt:    now,
	}

	if err := e.challenges.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s", code)
	if err := e.sender.Send(ctx, phoneNumber, message); err != nil {
		// best effort; the TTL reaps it anyway
		e.challenges.Delete(ctx, challenge.ID)
		return nil, fmt.Errorf("%w: %w", sms.ErrDeliveryFailed, err)
	}

	return challenge, nil
}

// ChallengePhone returns the phone number a challenge was issued for, so
// callers can take the per-phone lock before adjudicating.
func (e *VerificationEngine) ChallengePhone(ctx context.Context, challengeID uuid.UUID) (string, error) {
	challenge, err := e.challenges.GetByID(ctx, challengeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrChallengeNotFound
	}
	if err != nil {
		return "", err
	}
	return challenge.PhoneNumber, nil
}

// Submit compares one candidate against the issued code. The candidate must
// already be whitespace-trimmed by the caller; comparison is exact and
// case-sensitive. The first match consumes the challenge; exhausting the
// budget without a match removes it as well.
func (e *VerificationEngine) Submit(ctx context.Context, challengeID uuid.UUID, code string) (*SubmitResult, error) {
	challenge, err := e.challenges.GetByID(ctx, challengeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}

	if code != "" && utils.CheckCode(challenge.CodeHash, code) {
		if err := e.challenges.Delete(ctx, challenge.ID); err != nil {
			return nil, err
		}
		return &SubmitResult{Outcome: SubmitAccepted, PhoneNumber: challenge.PhoneNumber}, nil
	}

	challenge.AttemptsLeft--
	if challenge.AttemptsLeft <= 0 {
		if err := e.challenges.Delete(ctx, challenge.ID); err != nil {
			return nil, err
		}
		return &SubmitResult{Outcome: SubmitRejected, PhoneNumber: challenge.PhoneNumber}, nil
	}

	if err := e.challenges.Update(ctx, challenge); err != nil {
		return nil, err
	}
	return &SubmitResult{
		Outcome:      SubmitWrongCode,
		PhoneNumber:  challenge.PhoneNumber,
		AttemptsLeft: challenge.AttemptsLeft,
	}, nil
}

func generateCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
