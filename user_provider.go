package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// UserProvider adapts the users repository to the CredentialStore
// contract the authorization engine and session mutators consume.
type UserProvider struct {
	repo     RepositoryManager
	register *RegisterUserHandler
	logger   Logger
}

var _ CredentialStore = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(repo RepositoryManager) *UserProvider {
	return &UserProvider{
		repo:     repo,
		register: NewRegisterUserHandler(repo),
		logger:   defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// FindAuthByID loads the auth projection of a user. IDs that do not
// parse as UUIDs resolve to not found rather than an input error, a
// stale token is indistinguishable from a deleted user.
func (u *UserProvider) FindAuthByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrPrincipalNotFound
	}

	user, err := u.repo.Users().GetAuthByID(ctx, uid)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user by id")
	}

	return user, nil
}

func (u *UserProvider) FindByUsername(ctx context.Context, username string) (*User, error) {
	user, err := u.repo.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUsernameNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user by username")
	}

	return user, nil
}

// VerifyCredentials will find the user, compare to the password, and
// return the matching record
func (u *UserProvider) VerifyCredentials(ctx context.Context, username, password string) (*User, error) {
	user, err := u.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return user, nil
}

// CreateWithPassword registers a new user. Hashing and role defaulting
// happen inside the registration transaction.
func (u *UserProvider) CreateWithPassword(ctx context.Context, username, password string) (*User, error) {
	msg := RegisterUserMessage{
		Username: username,
		Password: password,
	}

	var created *User
	msg.OnResponse = func(user *User) {
		created = user
	}

	if err := u.register.Execute(ctx, msg); err != nil {
		return nil, err
	}

	return created, nil
}

func (u *UserProvider) StampSignOut(ctx context.Context, id uuid.UUID) error {
	if err := u.repo.Users().StampSignOut(ctx, id, time.Now()); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to stamp sign out")
	}
	return nil
}
