package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ajibolad/phoneauth/internal/models"
	"github.com/ajibolad/phoneauth/internal/repositories"
	"github.com/ajibolad/phoneauth/internal/sms"
	"github.com/ajibolad/phoneauth/internal/utils"
)

type CreateOutcome string

const (
	CreateCreated       CreateOutcome = "created"
	CreateAlreadyExists CreateOutcome = "already_exists"
)

type LoginOutcome string

const (
	LoginNotFound        LoginOutcome = "not_found"
	LoginStillInSession  LoginOutcome = "still_in_session"
	LoginChallengeIssued LoginOutcome = "challenge_issued"
	LoginDeliveryFailed  LoginOutcome = "delivery_failed"
)

type VerifyOutcome string

const (
	VerifySuccess   VerifyOutcome = "verified"
	VerifyWrongCode VerifyOutcome = "wrong_code"
	VerifyFailure   VerifyOutcome = "failed"
	VerifyNotFound  VerifyOutcome = "challenge_not_found"
)

type DeleteOutcome string

const (
	DeleteDeleted      DeleteOutcome = "deleted"
	DeleteNotDeleted   DeleteOutcome = "not_deleted"
	DeleteNotFound     DeleteOutcome = "not_found"
	DeleteUnrecognized DeleteOutcome = "unrecognized_confirmation"
)

// Confirmation is the normalized form of a destructive-action answer.
type Confirmation int

const (
	ConfirmUnrecognized Confirmation = iota
	ConfirmYes
	ConfirmNo
)

// ParseConfirmation normalizes a yes/no answer. Anything outside the
// accepted forms is unrecognized and must be re-asked, never defaulted.
func ParseConfirmation(input string) Confirmation {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return ConfirmYes
	case "n", "no":
		return ConfirmNo
	default:
		return ConfirmUnrecognized
	}
}

type CreateAccountRequest struct {
	Name        string
	DateOfBirth time.Time
	PhoneNumber string
	Gender      string
}

type LoginResult struct {
	Outcome        LoginOutcome
	ChallengeID    uuid.UUID
	AttemptsLeft   int
	Token          string
	TokenExpiresAt time.Time
}

type VerifyResult struct {
	Outcome        VerifyOutcome
	PhoneNumber    string
	AttemptsLeft   int
	Token          string
	TokenExpiresAt time.Time
}

type ProfileView struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	DateOfBirth  string `json:"date_of_birth"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	RegisteredAt string `json:"registered_at"`
}

// AccountService orchestrates the account lifecycle: creation with
// uniqueness enforcement, code-verified login inside the session window,
// confirmed deletion and profile reads. Business results come back as
// outcome values; errors are reserved for infrastructure faults.
type AccountService struct {
	accounts       repositories.AccountRepository
	engine         *VerificationEngine
	tokens         *TokenIssuer
	locks          *utils.KeyMutex
	sessionTimeout time.Duration
	now            func() time.Time
}

func NewAccountService(
	accounts repositories.AccountRepository,
	engine *VerificationEngine,
	tokens *TokenIssuer,
	sessionTimeout time.Duration,
) *AccountService {
	return &AccountService{
		accounts:       accounts,
		engine:         engine,
		tokens:         tokens,
		locks:          utils.NewKeyMutex(),
		sessionTimeout: sessionTimeout,
		now:            time.Now,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (CreateOutcome, error) {
	s.locks.Lock(req.PhoneNumber)
	defer s.locks.Unlock(req.PhoneNumber)

	exists, err := s.accounts.Exists(ctx, req.PhoneNumber)
	if err != nil {
		return "", fmt.Errorf("failed to check phone number: %w", err)
	}
	if exists {
		return CreateAlreadyExists, nil
	}

	account := &models.Account{
		PhoneNumber:  req.PhoneNumber,
		Name:         req.Name,
		DateOfBirth:  req.DateOfBirth,
		Gender:       req.Gender,
		RegisteredAt: s.now().UTC(),
		LastLoginAt:  models.SentinelLastLogin,
	}

	err = s.accounts.Create(ctx, account)
	if errors.Is(err, repositories.ErrConflict) {
		return CreateAlreadyExists, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	return CreateCreated, nil
}

// BeginLogin decides whether verification is needed. Inside the session
// window it short-circuits with a token; outside it issues a challenge and
// dispatches the code. No account state changes here.
func (s *AccountService) BeginLogin(ctx context.Context, phoneNumber string) (*LoginResult, error) {
	s.locks.Lock(phoneNumber)
	defer s.locks.Unlock(phoneNumber)

	account, err := s.accounts.GetByPhone(ctx, phoneNumber)
	if errors.Is(err, repositories.ErrNotFound) {
		return &LoginResult{Outcome: LoginNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !SessionExpired(account.LastLoginAt, s.now(), s.sessionTimeout) {
		token, expiresAt, err := s.tokens.Issue(phoneNumber)
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			Outcome:        LoginStillInSession,
			Token:          token,
			TokenExpiresAt: expiresAt,
		}, nil
	}

	challenge, err := s.engine.Issue(ctx, phoneNumber)
	if errors.Is(err, sms.ErrDeliveryFailed) {
		return &LoginResult{Outcome: LoginDeliveryFailed}, nil
	}
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Outcome:      LoginChallengeIssued,
		ChallengeID:  challenge.ID,
		AttemptsLeft: challenge.AttemptsLeft,
	}, nil
}

// SubmitCode adjudicates one candidate code. The per-phone lock is held
// across the whole adjudication so concurrent submissions cannot each read
// the same attempt budget, and the last-login stamp moves only on the
// accepted transition, so a cancelled or failed attempt sequence leaves the
// account untouched.
func (s *AccountService) SubmitCode(ctx context.Context, challengeID uuid.UUID, code string) (*VerifyResult, error) {
	phoneNumber, err := s.engine.ChallengePhone(ctx, challengeID)
	if errors.Is(err, ErrChallengeNotFound) {
		return &VerifyResult{Outcome: VerifyNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	s.locks.Lock(phoneNumber)
	defer s.locks.Unlock(phoneNumber)

	result, err := s.engine.Submit(ctx, challengeID, code)
	if errors.Is(err, ErrChallengeNotFound) {
		// consumed or expired between the lookup and taking the lock
		return &VerifyResult{Outcome: VerifyNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case SubmitAccepted:
		if err := s.accounts.SetLastLogin(ctx, result.PhoneNumber, s.now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to stamp login time: %w", err)
		}
		token, expiresAt, err := s.tokens.Issue(result.PhoneNumber)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{
			Outcome:        VerifySuccess,
			PhoneNumber:    result.PhoneNumber,
			Token:          token,
			TokenExpiresAt: expiresAt,
		}, nil

	case SubmitRejected:
		return &VerifyResult{Outcome: VerifyFailure, PhoneNumber: result.PhoneNumber}, nil

	default:
		return &VerifyResult{
			Outcome:      VerifyWrongCode,
			PhoneNumber:  result.PhoneNumber,
			AttemptsLeft: result.AttemptsLeft,
		}, nil
	}
}

func (s *AccountService) DeleteAccount(ctx context.Context, phoneNumber string, confirmation string) (DeleteOutcome, error) {
	switch ParseConfirmation(confirmation) {
	case ConfirmNo:
		return DeleteNotDeleted, nil
	case ConfirmUnrecognized:
		return DeleteUnrecognized, nil
	}

	s.locks.Lock(phoneNumber)
	defer s.locks.Unlock(phoneNumber)

	err := s.accounts.Delete(ctx, phoneNumber)
	if errors.Is(err, repositories.ErrNotFound) {
		return DeleteNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete account: %w", err)
	}
	return DeleteDeleted, nil
}

// Profile is a pure read: age recomputed from the date of birth, nothing
// stamped.
func (s *AccountService) Profile(ctx context.Context, phoneNumber string) (*ProfileView, error) {
	account, err := s.accounts.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		Name:         account.Name,
		PhoneNumber:  account.PhoneNumber,
		DateOfBirth:  account.DateOfBirth.Format("2006-01-02"),
		Age:          account.Age(s.now()),
		Gender:       account.Gender,
		RegisteredAt: account.RegisteredAt.Format("Jan 2, 2006 at 3:04 PM"),
	}, nil
}
