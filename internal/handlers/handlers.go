package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ajibolad/phoneauth/internal/repositories"
	"github.com/ajibolad/phoneauth/internal/services"
	"github.com/ajibolad/phoneauth/internal/validate"
)

type Handler struct {
	svc *services.AccountService
}

func NewHandler(svc *services.AccountService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/accounts", h.handleCreateAccount)
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/login/verify", h.handleVerify)
	r.Get("/api/accounts/{phoneNumber}", h.handleProfile)
	r.Delete("/api/accounts/{phoneNumber}", h.handleDeleteAccount)
}

// --------- DTOs ---------

type createAccountReq struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	PhoneNumber string `json:"phoneNumber"`
	Gender      string `json:"gender"`
}

type loginReq struct {
	PhoneNumber string `json:"phoneNumber"`
}

type verifyReq struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
}

type deleteReq struct {
	Confirmation string `json:"confirmation"`
}

type loginResp struct {
	Outcome        string     `json:"outcome"`
	ChallengeID    string     `json:"challengeId,omitempty"`
	Attempts       int        `json:"attempts,omitempty"`
	Token          string     `json:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
}

// --------- Handlers ---------

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in createAccountReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Gender = strings.TrimSpace(in.Gender)

	if err := validate.Name(in.Name); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.PhoneNumber(in.PhoneNumber); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Gender(in.Gender); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	dob, err := validate.DateOfBirth(in.DateOfBirth)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.svc.CreateAccount(r.Context(), services.CreateAccountRequest{
		Name:        in.Name,
		DateOfBirth: dob,
		PhoneNumber: in.PhoneNumber,
		Gender:      in.Gender,
	})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "could not create account")
		return
	}

	if outcome == services.CreateAlreadyExists {
		errorJSON(w, http.StatusConflict, "account already exists, log in instead")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"outcome": string(outcome)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := validate.PhoneNumber(in.PhoneNumber); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.BeginLogin(r.Context(), in.PhoneNumber)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "login failed")
		return
	}

	switch result.Outcome {
	case services.LoginNotFound:
		errorJSON(w, http.StatusNotFound, "account not found")
	case services.LoginDeliveryFailed:
		errorJSON(w, http.StatusBadGateway, "could not deliver verification code")
	case services.LoginStillInSession:
		writeJSON(w, http.StatusOK, loginResp{
			Outcome:        string(result.Outcome),
			Token:          result.Token,
			TokenExpiresAt: &result.TokenExpiresAt,
		})
	default:
		writeJSON(w, http.StatusAccepted, loginResp{
			Outcome:     string(result.Outcome),
			ChallengeID: result.ChallengeID.String(),
			Attempts:    result.AttemptsLeft,
		})
	}
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var in verifyReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	challengeID, err := uuid.Parse(strings.TrimSpace(in.ChallengeID))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid challenge id")
		return
	}

	// the code contract requires a trimmed candidate
	result, err := h.svc.SubmitCode(r.Context(), challengeID, strings.TrimSpace(in.Code))
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "verification failed")
		return
	}

	switch result.Outcome {
	case services.VerifyNotFound:
		errorJSON(w, http.StatusNotFound, "challenge not found or expired")
	case services.VerifyFailure:
		errorJSON(w, http.StatusUnauthorized, "verification failed, attempts exhausted")
	case services.VerifyWrongCode:
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"outcome":      string(result.Outcome),
			"attemptsLeft": result.AttemptsLeft,
		})
	default:
		writeJSON(w, http.StatusOK, loginResp{
			Outcome:        string(result.Outcome),
			Token:          result.Token,
			TokenExpiresAt: &result.TokenExpiresAt,
		})
	}
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	phoneNumber := chi.URLParam(r, "phoneNumber")

	profile, err := h.svc.Profile(r.Context(), phoneNumber)
	if errors.Is(err, repositories.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	phoneNumber := chi.URLParam(r, "phoneNumber")

	var in deleteReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	outcome, err := h.svc.DeleteAccount(r.Context(), phoneNumber, in.Confirmation)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "could not delete account")
		return
	}

	switch outcome {
	case services.DeleteNotFound:
		errorJSON(w, http.StatusNotFound, "account not found")
	case services.DeleteUnrecognized:
		errorJSON(w, http.StatusUnprocessableEntity, "confirmation must be yes or no")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"outcome": string(outcome)})
	}
}
