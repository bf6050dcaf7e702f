package services

import "time"

// SessionExpired reports whether the rolling session window has lapsed.
// A brand-new account carries the sentinel last-login, so this is always
// true on first login.
func SessionExpired(lastActivity, now time.Time, timeout time.Duration) bool {
	return now.Sub(lastActivity) >= timeout
}
