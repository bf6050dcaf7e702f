package models

import "time"

// SentinelLastLogin is the far-past default stamped on new accounts so the
// first login always goes through verification.
var SentinelLastLogin = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type Account struct {
	PhoneNumber  string    `json:"phone_number"`
	Name         string    `json:"name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Gender       string    `json:"gender"`
	RegisteredAt time.Time `json:"registered_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Age is derived from DateOfBirth at the given instant; it is never stored.
func (a *Account) Age(now time.Time) int {
	dob := a.DateOfBirth
	years := now.Year() - dob.Year()
	// birthday not reached yet this year
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
