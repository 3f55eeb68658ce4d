package auth

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/2beens/kadjot/pkg"
)

const (
	// TokenHeader carries the session token of a registered user.
	TokenHeader = "X-KADJOT-TOKEN"
	// GuestHeader carries the id of an anonymous guest.
	GuestHeader = "X-KADJOT-GUEST"

	guestIDLength = 24
)

var guestIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{24}$`)

type OwnerKind string

const (
	OwnerUser  OwnerKind = "user"
	OwnerGuest OwnerKind = "guest"
)

// Owner is whoever a program and its completion record belong to: either a
// registered user or a guest.
type Owner struct {
	Kind    OwnerKind
	UserID  int
	GuestID string
}

func UserOwner(userID int) Owner {
	return Owner{Kind: OwnerUser, UserID: userID}
}

func GuestOwner(guestID string) Owner {
	return Owner{Kind: OwnerGuest, GuestID: guestID}
}

func (o Owner) IsUser() bool {
	return o.Kind == OwnerUser && o.UserID > 0
}

func (o Owner) IsGuest() bool {
	return o.Kind == OwnerGuest && o.GuestID != ""
}

// Key is a stable string identifying the owner, used for cache keys.
func (o Owner) Key() string {
	if o.IsUser() {
		return string(OwnerUser) + ":" + strconv.Itoa(o.UserID)
	}
	return string(OwnerGuest) + ":" + o.GuestID
}

func (o Owner) String() string {
	return o.Key()
}

func NewGuestID() (string, error) {
	id, err := pkg.GenerateRandomString(guestIDLength)
	if err != nil {
		return "", fmt.Errorf("generate guest id: %w", err)
	}
	return id, nil
}

func IsValidGuestID(id string) bool {
	return guestIDRegex.MatchString(id)
}

type ownerCtxKey struct{}

func ContextWithOwner(ctx context.Context, owner Owner) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, owner)
}

// OwnerFromContext returns the owner resolved by the auth middleware.
func OwnerFromContext(ctx context.Context) (Owner, bool) {
	owner, ok := ctx.Value(ownerCtxKey{}).(Owner)
	if !ok || (!owner.IsUser() && !owner.IsGuest()) {
		return Owner{}, false
	}
	return owner, true
}
