package auth

import "context"

// LoginTestChecker is an in-memory Checker for tests and local tooling.
type LoginTestChecker struct {
	LoggedSessions map[string]int
	Guests         map[string]bool
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]int{},
		Guests:         map[string]bool{},
	}
}

func (c *LoginTestChecker) LoggedUserID(_ context.Context, token string) (int, error) {
	userID, ok := c.LoggedSessions[token]
	if !ok {
		return 0, ErrNotLoggedIn
	}
	return userID, nil
}

func (c *LoginTestChecker) GuestExists(_ context.Context, guestID string) (bool, error) {
	return c.Guests[guestID], nil
}
