package users

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AccountGetter is the slice of the account store the provider needs
type AccountGetter interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider turns stored accounts into verified identities
type UserProvider struct {
	store  AccountGetter
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store AccountGetter) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, check the account is active, compare
// the password, and return the identity. Unknown emails and wrong
// passwords both surface ErrInvalidCredentials so the two cases are
// indistinguishable to callers.
func (u UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}

	return identityFromUser(user), nil
}

// FindIdentityByEmail resolves an identity without checking credentials
func (u UserProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}

	return identityFromUser(user), nil
}

type authIdentity struct {
	id    string
	email string
	role  string
}

func (a authIdentity) ID() string    { return a.id }
func (a authIdentity) Email() string { return a.email }
func (a authIdentity) Role() string  { return a.role }

var _ Identity = authIdentity{}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:    user.ID.String(),
		email: user.Email,
		role:  string(user.Role),
	}
}
