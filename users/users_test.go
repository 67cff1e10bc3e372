package users_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"valid", "Secret12!", ""},
		{"too short", "Se1!", "Password must be at least 8 characters long"},
		{"no upper", "secret12!", "Password must contain at least one uppercase letter"},
		{"no lower", "SECRET12!", "Password must contain at least one lowercase letter"},
		{"no number", "Secretss!", "Password must contain at least one number"},
		{"no symbol", "Secret123", "Password must contain at least one special character"},
		{"symbol outside set", "Secret12~", "Password must contain at least one special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, apperrors.ErrValidation)
			require.Equal(t, tt.wantMsg, apperrors.UserMessage(err))
		})
	}
}

func TestPasswordProblemsReportsEveryRule(t *testing.T) {
	require.Len(t, users.PasswordProblems(""), 5)
	require.Empty(t, users.PasswordProblems("Abcdef1?"))
}

func TestValidateEmailAndName(t *testing.T) {
	require.NoError(t, users.ValidateEmail("ana@example.com"))
	require.ErrorIs(t, users.ValidateEmail("ana@example"), apperrors.ErrValidation)
	require.ErrorIs(t, users.ValidateEmail("ana example@x.io"), apperrors.ErrValidation)

	require.NoError(t, users.ValidateName("Al"))
	require.ErrorIs(t, users.ValidateName(" A "), apperrors.ErrValidation)
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Secret12!")
	require.NoError(t, err)
	require.NotEqual(t, "Secret12!", hash)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("Secret12!"))
	require.False(t, u.CheckPassword("secret12!"))
}

func TestKVRepo(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	repo := users.NewKVRepo(store)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &users.User{ID: "u1", Email: "ana@example.com", PasswordHash: "h1", Name: "Ana", CreatedAt: created}))
	require.NoError(t, repo.Upsert(ctx, &users.User{ID: "u2", Email: "bo@example.com", PasswordHash: "h2", Name: "Bo"}))

	t.Run("lookup by email ignores case", func(t *testing.T) {
		u, err := repo.GetByEmail(ctx, "ANA@Example.com")
		require.NoError(t, err)
		require.Equal(t, "u1", u.ID)
		require.Equal(t, "h1", u.PasswordHash)
		require.True(t, created.Equal(u.CreatedAt))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nope")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("upsert replaces in place", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &users.User{ID: "u1", Email: "ana@example.com", PasswordHash: "h3", Name: "Ana"}))
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "u1", list[0].ID)
		require.Equal(t, "h3", list[0].PasswordHash)
	})

	t.Run("hash is persisted but not in the public projection", func(t *testing.T) {
		raw, err := store.Get(ctx, users.RegisteredUsersKey)
		require.NoError(t, err)
		require.Contains(t, string(raw), `"password_hash":"h3"`)

		u, err := repo.GetByID(ctx, "u2")
		require.NoError(t, err)
		require.Equal(t, users.PublicUser{ID: "u2", Email: "bo@example.com", Name: "Bo"}, u.Public())
	})
}

func TestKVRepoCreate(t *testing.T) {
	ctx := context.Background()
	repo := users.NewKVRepo(kv.NewMemory())

	require.NoError(t, repo.Create(ctx, &users.User{ID: "u1", Email: "bo@example.com", PasswordHash: "h1", Name: "Bo"}))

	err := repo.Create(ctx, &users.User{ID: "u2", Email: "BO@example.com", PasswordHash: "h2", Name: "Bob"})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, repo.Create(ctx, &users.User{ID: "u3", Email: "cy@example.com", PasswordHash: "h3", Name: "Cy"}))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "u1", list[0].ID)
	require.Equal(t, "u3", list[1].ID)
}
