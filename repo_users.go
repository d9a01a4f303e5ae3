package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the account store. Create is the only mutator: accounts are
// never updated or deleted through this interface.
type Users interface {
	repository.Repository[*User]

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error)

	ListAll(ctx context.Context) ([]*User, error)
	ListAllTx(ctx context.Context, tx bun.IDB) ([]*User, error)
}

type usersRepo struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*usersRepo)(nil)
	_ repository.Repository[*User] = (*usersRepo)(nil)
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
	})

	return &usersRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *usersRepo) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

// CreateTx inserts the record relying on the unique index on email to keep
// the existence check and the insert atomic under concurrent writers.
func (a *usersRepo) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, goerrors.Wrap(err, ErrDuplicateAccount.Category, ErrDuplicateAccount.Message).
				WithTextCode(textCodeDuplicateAccount).
				WithMetadata(map[string]any{
					"email": record.Email,
				})
		}
		return nil, err
	}

	return created, nil
}

func (a *usersRepo) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id, criteria...)
}

// GetByIDTx maps the generic repository's record-not-found classification
// onto the account error taxonomy, symmetric with GetByEmailTx.
func (a *usersRepo) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*User, error) {
	record, err := a.Repository.GetByIDTx(ctx, tx, id, criteria...)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.Wrap(err, ErrAccountNotFound.Category, ErrAccountNotFound.Message).
				WithTextCode(textCodeAccountNotFound).
				WithMetadata(map[string]any{
					"id": id,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *usersRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *usersRepo) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.Wrap(err, ErrAccountNotFound.Category, ErrAccountNotFound.Message).
				WithTextCode(textCodeAccountNotFound).
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query user by email")
	}

	return record, nil
}

func (a *usersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.ExistsByEmailTx(ctx, a.db, email)
}

func (a *usersRepo) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Exists(ctx)
}

func (a *usersRepo) ListAll(ctx context.Context) ([]*User, error) {
	return a.ListAllTx(ctx, a.db)
}

func (a *usersRepo) ListAllTx(ctx context.Context, tx bun.IDB) ([]*User, error) {
	records := []*User{}

	if err := tx.NewSelect().Model(&records).Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	return records, nil
}

// NormalizeEmail lowercases and trims an email so uniqueness and lookups
// are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.Role == "" {
		record.Role = RoleUser
	}

	record.Active = true

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}
