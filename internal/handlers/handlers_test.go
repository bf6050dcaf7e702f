package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajibolad/phoneauth/internal/models"
	"github.com/ajibolad/phoneauth/internal/repositories"
	"github.com/ajibolad/phoneauth/internal/services"
)

type memAccountRepo struct {
	accounts map[string]models.Account
}

func (r *memAccountRepo) Create(ctx context.Context, a *models.Account) error {
	if _, ok := r.accounts[a.PhoneNumber]; ok {
		return repositories.ErrConflict
	}
	r.accounts[a.PhoneNumber] = *a
	return nil
}

func (r *memAccountRepo) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	a, ok := r.accounts[phone]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (r *memAccountRepo) Exists(ctx context.Context, phone string) (bool, error) {
	_, ok := r.accounts[phone]
	return ok, nil
}

func (r *memAccountRepo) SetLastLogin(ctx context.Context, phone string, at time.Time) error {
	a, ok := r.accounts[phone]
	if !ok {
		return repositories.ErrNotFound
	}
	a.LastLoginAt = at
	r.accounts[phone] = a
	return nil
}

func (r *memAccountRepo) Delete(ctx context.Context, phone string) error {
	if _, ok := r.accounts[phone]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.accounts, phone)
	return nil
}

type memChallengeRepo struct {
	challenges map[uuid.UUID]models.Challenge
}

func (r *memChallengeRepo) Put(ctx context.Context, c *models.Challenge) error {
	r.challenges[c.ID] = *c
	return nil
}

func (r *memChallengeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	c, ok := r.challenges[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *memChallengeRepo) Update(ctx context.Context, c *models.Challenge) error {
	r.challenges[c.ID] = *c
	return nil
}

func (r *memChallengeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.challenges, id)
	return nil
}

type captureSender struct {
	lastMessage string
}

func (s *captureSender) Send(ctx context.Context, to, message string) error {
	s.lastMessage = message
	return nil
}

func (s *captureSender) lastCode() string {
	return strings.TrimPrefix(s.lastMessage, "Your verification code is: ")
}

func newTestRouter() (chi.Router, *captureSender) {
	accounts := &memAccountRepo{accounts: make(map[string]models.Account)}
	challenges := &memChallengeRepo{challenges: make(map[uuid.UUID]models.Challenge)}
	sender := &captureSender{}

	engine := services.NewVerificationEngine(challenges, sender, 6, 5, 5*time.Minute)
	tokens := services.NewTokenIssuer("test-secret", time.Hour)
	svc := services.NewAccountService(accounts, engine, tokens, 720*time.Minute)

	r := chi.NewRouter()
	NewHandler(svc).Routes(r)
	return r, sender
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createAda(t *testing.T, r chi.Router) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/accounts", map[string]string{
		"name":        "Ada",
		"dateOfBirth": "1990-01-01",
		"phoneNumber": "5551234567",
		"gender":      "F",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateAccount_Endpoint(t *testing.T) {
	r, _ := newTestRouter()

	createAda(t, r)

	// duplicate phone number conflicts and points at login
	rec := doJSON(t, r, http.MethodPost, "/api/accounts", map[string]string{
		"name":        "Ada",
		"dateOfBirth": "1990-01-01",
		"phoneNumber": "5551234567",
		"gender":      "F",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "log in instead")

	// malformed phone number is rejected before the core runs
	rec = doJSON(t, r, http.MethodPost, "/api/accounts", map[string]string{
		"name":        "Bob",
		"dateOfBirth": "1990-01-01",
		"phoneNumber": "123",
		"gender":      "M",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginAndVerify_Endpoints(t *testing.T) {
	r, sender := newTestRouter()
	createAda(t, r)

	// fresh account: challenge issued
	rec := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{"phoneNumber": "5551234567"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var login struct {
		Outcome     string `json:"outcome"`
		ChallengeID string `json:"challengeId"`
		Attempts    int    `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "challenge_issued", login.Outcome)
	assert.Equal(t, 5, login.Attempts)

	// wrong code burns an attempt
	rec = doJSON(t, r, http.MethodPost, "/api/login/verify", map[string]string{
		"challengeId": login.ChallengeID,
		"code":        "this-is-wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "attemptsLeft")

	// correct code (with surrounding whitespace trimmed) succeeds
	rec = doJSON(t, r, http.MethodPost, "/api/login/verify", map[string]string{
		"challengeId": login.ChallengeID,
		"code":        "  " + sender.lastCode() + "  ",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "token")

	// immediately after: still in session, no new code
	rec = doJSON(t, r, http.MethodPost, "/api/login", map[string]string{"phoneNumber": "5551234567"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "still_in_session")
}

func TestLogin_UnknownNumberEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/login", map[string]string{"phoneNumber": "5550000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerify_UnknownChallengeEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/login/verify", map[string]string{
		"challengeId": uuid.NewString(),
		"code":        "123456",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfile_Endpoint(t *testing.T) {
	r, _ := newTestRouter()
	createAda(t, r)

	rec := doJSON(t, r, http.MethodGet, "/api/accounts/5551234567", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile services.ProfileView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "1990-01-01", profile.DateOfBirth)
	assert.NotZero(t, profile.Age)

	rec = doJSON(t, r, http.MethodGet, "/api/accounts/5559999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAccount_Endpoint(t *testing.T) {
	r, _ := newTestRouter()
	createAda(t, r)

	rec := doJSON(t, r, http.MethodDelete, "/api/accounts/5551234567", map[string]string{"confirmation": "maybe"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/api/accounts/5551234567", map[string]string{"confirmation": "no"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_deleted")

	rec = doJSON(t, r, http.MethodDelete, "/api/accounts/5551234567", map[string]string{"confirmation": "yes"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deleted")

	rec = doJSON(t, r, http.MethodDelete, "/api/accounts/5551234567", map[string]string{"confirmation": "yes"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
