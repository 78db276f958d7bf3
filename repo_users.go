package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// authColumns are the only fields an authorization decision needs.
var authColumns = []string{
	"id",
	"username",
	"user_role",
	"password_hash",
	"password_changed_at",
	"last_sign_out_at",
}

var stampSignOutSQL = `UPDATE "users" AS "usr"
SET
	"last_sign_out_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
);`

var rotatePasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"password_changed_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
);`

type Users interface {
	repository.Repository[*User]

	GetAuthByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetAuthByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	StampSignOut(ctx context.Context, id uuid.UUID, at time.Time) error
	StampSignOutTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error

	RotatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error
	RotatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, changedAt time.Time) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetAuthByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetAuthByIDTx(ctx, a.db, id)
}

func (a *users) GetAuthByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Column(authColumns...).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"username": username})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) StampSignOut(ctx context.Context, id uuid.UUID, at time.Time) error {
	return a.StampSignOutTx(ctx, a.db, id, at)
}

// StampSignOutTx records the sign-out time as a single field-level
// update, last write wins against concurrent password mutations.
func (a *users) StampSignOutTx(ctx context.Context, tx bun.IDB, id uuid.UUID, at time.Time) error {
	_, err := tx.NewRaw(stampSignOutSQL, at, id.String()).Exec(ctx)
	return err
}

func (a *users) RotatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	return a.RotatePasswordTx(ctx, a.db, id, passwordHash, changedAt)
}

// RotatePasswordTx replaces the password hash and refreshes
// password_changed_at in the same statement; the two fields must never
// be written separately.
func (a *users) RotatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	res, err := tx.NewRaw(rotatePasswordSQL, passwordHash, changedAt, id.String()).Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	// Both invalidation stamps start at creation time, in the same
	// insert as the hash: a token can never predate its own account.
	now := time.Now()
	if record.PasswordChangedAt == nil {
		record.PasswordChangedAt = &now
	}
	if record.LastSignOutAt == nil {
		record.LastSignOutAt = &now
	}
}
