package users_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	users "github.com/lmra/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupRepoManager(t *testing.T) (users.RepositoryManager, func()) {
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

	return users.NewRepositoryManager(bunDB), cleanup
}

func TestCreateUserHandler(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	handler := users.NewCreateUserHandler(repo)

	t.Run("creates an account with defaults", func(t *testing.T) {
		var created *users.User

		err := handler.Execute(ctx, users.CreateUserMessage{
			Email:    "a@x.com",
			Password: "password1",
			OnResponse: func(u *users.User) {
				created = u
			},
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, users.RoleUser, created.Role)
		assert.True(t, created.Active)

		assert.NotEqual(t, "password1", created.PasswordHash)
		assert.NoError(t, users.ComparePasswordAndHash("password1", created.PasswordHash))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		err := handler.Execute(ctx, users.CreateUserMessage{
			Email:    "a@x.com",
			Password: "password2",
		})
		require.Error(t, err)
		assert.True(t, users.IsDuplicateAccount(err))
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		err := handler.Execute(ctx, users.CreateUserMessage{
			Email:    "short@x.com",
			Password: "seven77",
		})
		assert.Error(t, err)
	})

	t.Run("rejects malformed emails", func(t *testing.T) {
		err := handler.Execute(ctx, users.CreateUserMessage{
			Email:    "not-an-email",
			Password: "password1",
		})
		assert.Error(t, err)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		err := handler.Execute(ctx, users.CreateUserMessage{
			Email:    "roles@x.com",
			Password: "password1",
			Role:     "SUPERUSER",
		})
		assert.Error(t, err)
	})

	t.Run("accepts an explicit admin role", func(t *testing.T) {
		var created *users.User

		err := handler.Execute(ctx, users.CreateUserMessage{
			Email:    "admin@x.com",
			Password: "password1",
			Role:     string(users.RoleAdmin),
			OnResponse: func(u *users.User) {
				created = u
			},
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, users.RoleAdmin, created.Role)
	})

	t.Run("hashid option derives deterministic ids", func(t *testing.T) {
		var created *users.User

		err := handler.Execute(ctx, users.CreateUserMessage{
			Email:     "Deterministic@X.com",
			Password:  "password1",
			UseHashid: true,
			OnResponse: func(u *users.User) {
				created = u
			},
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		expected, err := hashid.NewUUID("deterministic@x.com")
		require.NoError(t, err)
		assert.Equal(t, expected, created.ID)
	})
}
