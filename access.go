package token

import (
	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
)

// AccessControl holds the single administrator role. It is never unset.
//
// AccessControl does no locking of its own; the owning Ledger drives it
// under its write lock.
type AccessControl struct {
	admin id.AccountID
}

func newAccessControl(initial id.AccountID) *AccessControl {
	return &AccessControl{admin: initial}
}

// Administrator returns the current administrator.
func (a *AccessControl) Administrator() id.AccountID {
	return a.admin
}

// IsAdministrator reports whether account holds the administrator role.
func (a *AccessControl) IsAdministrator(account id.AccountID) bool {
	return !account.IsNil() && account.Equal(a.admin)
}

func (a *AccessControl) authorize(caller id.AccountID) error {
	if !a.IsAdministrator(caller) {
		return ErrUnauthorized
	}
	return nil
}

// transfer hands the role to successor. Handing it to the current holder is
// allowed and still reported.
func (a *AccessControl) transfer(caller, successor id.AccountID) (event.OwnershipTransferred, error) {
	if err := a.authorize(caller); err != nil {
		return event.OwnershipTransferred{}, err
	}
	if successor.IsNil() {
		return event.OwnershipTransferred{}, ErrInvalidAccount
	}

	previous := a.admin
	a.admin = successor
	return event.OwnershipTransferred{Previous: previous, New: successor}, nil
}
