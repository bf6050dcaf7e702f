package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajibolad/phoneauth/internal/models"
	"github.com/ajibolad/phoneauth/internal/repositories"
)

// In-memory doubles for the storage and delivery boundaries.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]models.Account)}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.PhoneNumber]; ok {
		return repositories.ErrConflict
	}
	r.accounts[account.PhoneNumber] = *account
	return nil
}

func (r *fakeAccountRepo) GetByPhone(ctx context.Context, phoneNumber string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[phoneNumber]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &account, nil
}

func (r *fakeAccountRepo) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.accounts[phoneNumber]
	return ok, nil
}

func (r *fakeAccountRepo) SetLastLogin(ctx context.Context, phoneNumber string, lastLoginAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[phoneNumber]
	if !ok {
		return repositories.ErrNotFound
	}
	account.LastLoginAt = lastLoginAt
	r.accounts[phoneNumber] = account
	return nil
}

func (r *fakeAccountRepo) Delete(ctx context.Context, phoneNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[phoneNumber]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.accounts, phoneNumber)
	return nil
}

type fakeChallengeRepo struct {
	mu         sync.Mutex
	challenges map[uuid.UUID]models.Challenge
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: make(map[uuid.UUID]models.Challenge)}
}

func (r *fakeChallengeRepo) Put(ctx context.Context, challenge *models.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challenges[challenge.ID] = *challenge
	return nil
}

func (r *fakeChallengeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	challenge, ok := r.challenges[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &challenge, nil
}

func (r *fakeChallengeRepo) Update(ctx context.Context, challenge *models.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.challenges[challenge.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.challenges[challenge.ID] = *challenge
	return nil
}

func (r *fakeChallengeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.challenges, id)
	return nil
}

func (r *fakeChallengeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.challenges)
}

type fakeSender struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (s *fakeSender) Send(ctx context.Context, toPhoneNumber, messageText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("provider unreachable")
	}
	s.messages = append(s.messages, messageText)
	return nil
}

// lastCode pulls the code out of the most recently delivered message.
func (s *fakeSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	last := s.messages[len(s.messages)-1]
	return strings.TrimPrefix(last, "Your verification code is: ")
}
