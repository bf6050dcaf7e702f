// Package validate holds the field checks applied at the I/O boundary,
// before anything reaches the lifecycle service.
package validate

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const (
	PhoneNumberLength = 10
	MaxNameLength     = 50
)

var (
	ErrInvalidPhoneNumber = errors.New("phone number must be exactly 10 digits")
	ErrInvalidName        = errors.New("name must be non-empty and at most 50 characters")
	ErrInvalidDateOfBirth = errors.New("date of birth must be YYYY-MM-DD and not in the future")
	ErrInvalidGender      = errors.New("gender must be non-empty")
)

func PhoneNumber(s string) error {
	if len(s) != PhoneNumberLength {
		return ErrInvalidPhoneNumber
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return ErrInvalidPhoneNumber
		}
	}
	return nil
}

func Name(s string) error {
	if s == "" || len(s) > MaxNameLength {
		return ErrInvalidName
	}
	return nil
}

func DateOfBirth(s string) (time.Time, error) {
	dob, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDateOfBirth
	}
	if dob.After(time.Now()) {
		return time.Time{}, ErrInvalidDateOfBirth
	}
	return dob, nil
}

func Gender(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrInvalidGender
	}
	return nil
}
