package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

// Checker resolves request credentials into owners.
type Checker interface {
	LoggedUserID(ctx context.Context, token string) (int, error)
	GuestExists(ctx context.Context, guestID string) (bool, error)
}
