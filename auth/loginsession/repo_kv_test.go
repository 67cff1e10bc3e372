package loginsession_test

import (
	"context"
	"sort"
	"testing"

	"github.com/jrsteele09/go-station-dashboard/auth/loginsession"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/users"
	"github.com/stretchr/testify/require"
)

func TestKVRepo(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	repo := loginsession.NewKVRepo(store)

	_, err := repo.Get(ctx, "s1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	session := loginsession.Session{
		User:  users.PublicUser{ID: "u1", Email: "ana@example.com", Name: "Ana"},
		Token: "tok-1",
	}
	require.NoError(t, repo.Upsert(ctx, "s1", session))
	require.NoError(t, repo.Upsert(ctx, "s2", session))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, session, got)

	raw, err := store.Get(ctx, "auth_token/s1")
	require.NoError(t, err)
	require.Equal(t, "tok-1", string(raw))

	ids, err := repo.SessionIDs(ctx)
	require.NoError(t, err)
	sort.Strings(ids)
	require.Equal(t, []string{"s1", "s2"}, ids)

	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestKVRepoHalfSessions(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	repo := loginsession.NewKVRepo(store)

	require.NoError(t, store.Set(ctx, "auth_token/orphan", []byte("tok")))
	_, err := repo.Get(ctx, "orphan")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	ids, err := repo.SessionIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"orphan"}, ids)

	require.NoError(t, store.Set(ctx, "auth_user/bad", []byte("{")))
	require.NoError(t, store.Set(ctx, "auth_token/bad", []byte("tok")))
	_, err = repo.Get(ctx, "bad")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
