package users_test

import (
	"context"
	"database/sql"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	users "github.com/lmra/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    first_name TEXT,
    last_name TEXT,
    user_role TEXT NOT NULL,
    active BOOLEAN NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`

func setupUsersRepo(t *testing.T) (users.Users, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateUsers)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return users.NewUsersRepository(bunDB), cleanup
}

func TestUsersRepositoryCreate(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	created, err := repo.Create(ctx, &users.User{
		Email:        "A@X.com",
		PasswordHash: "irrelevant-hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "a@x.com", created.Email, "email should be lowercased")
	assert.Equal(t, users.RoleUser, created.Role, "role should default to USER")
	assert.True(t, created.Active)
	assert.NotNil(t, created.CreatedAt)
	assert.NotNil(t, created.UpdatedAt)
}

func TestUsersRepositoryDuplicateEmail(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.Create(ctx, &users.User{
		Email:        "a@x.com",
		PasswordHash: "hash-1",
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &users.User{
		Email:        "a@x.com",
		PasswordHash: "hash-2",
	})
	require.Error(t, err)
	assert.True(t, users.IsDuplicateAccount(err))

	// different case collides too
	_, err = repo.Create(ctx, &users.User{
		Email:        "A@X.COM",
		PasswordHash: "hash-3",
	})
	require.Error(t, err)
	assert.True(t, users.IsDuplicateAccount(err))

	records, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1, "no duplicate record should be persisted")
}

func TestUsersRepositoryGetByEmail(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	created, err := repo.Create(ctx, &users.User{
		Email:        "a@x.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	found, err := repo.GetByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))
}

func TestUsersRepositoryGetByID(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	created, err := repo.Create(ctx, &users.User{
		Email:        "a@x.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Email, found.Email)

	_, err = repo.GetByID(ctx, uuid.New().String())
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "ACCOUNT_NOT_FOUND", richErr.TextCode)
}

func TestUsersRepositoryExistsByEmail(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	exists, err := repo.ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, &users.User{
		Email:        "a@x.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	exists, err = repo.ExistsByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUsersRepositoryListAll(t *testing.T) {
	repo, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	records, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := repo.Create(ctx, &users.User{
			Email:        email,
			PasswordHash: "hash",
		})
		require.NoError(t, err)
	}

	records, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
