package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-station-dashboard/auth"
	"github.com/jrsteele09/go-station-dashboard/auth/loginsession"
	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/token"
	"github.com/jrsteele09/go-station-dashboard/users"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail    = "Ana.Lopez@Example.com"
	testUserPassword = "Secret12!"
	testUserName     = "Ana Lopez"
	testSessionID    = "session-1"
)

// testFixture holds all test dependencies
type testFixture struct {
	store    *kv.Memory
	users    *users.KVRepo
	sessions *loginsession.KVRepo
	service  *auth.Service
	now      time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	f.store = kv.NewMemory()
	f.users = users.NewKVRepo(f.store)
	f.sessions = loginsession.NewKVRepo(f.store)

	issuer, err := token.NewSessionIssuer([]byte("test-secret"), token.WithNowTime(clock))
	require.NoError(t, err)

	f.service, err = auth.NewService(auth.Repos{
		Users:    f.users,
		Sessions: f.sessions,
		Store:    f.store,
	}, issuer, auth.WithNowTime(clock))
	require.NoError(t, err)
	return f
}

func (f *testFixture) registerTestUser(t *testing.T) *users.User {
	t.Helper()
	u, err := f.service.Register(context.Background(), testUserEmail, testUserPassword, testUserName)
	require.NoError(t, err)
	return u
}

func (f *testFixture) storedUsers(t *testing.T) string {
	t.Helper()
	raw, err := f.store.Get(context.Background(), users.RegisteredUsersKey)
	require.NoError(t, err)
	return string(raw)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	issuer, err := token.NewSessionIssuer([]byte("s"))
	require.NoError(t, err)
	store := kv.NewMemory()

	_, err = auth.NewService(auth.Repos{Sessions: loginsession.NewKVRepo(store), Store: store}, issuer)
	require.Error(t, err)
	_, err = auth.NewService(auth.Repos{Users: users.NewKVRepo(store), Sessions: loginsession.NewKVRepo(store), Store: store}, nil)
	require.Error(t, err)
}

func TestRegisterThenLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	u := f.registerTestUser(t)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "ana.lopez@example.com", u.Email)
	require.Equal(t, testUserName, u.Name)
	require.NotEqual(t, testUserPassword, u.PasswordHash)
	require.True(t, f.now.Equal(u.CreatedAt))

	session, err := f.service.Login(ctx, testSessionID, "ANA.LOPEZ@example.com", testUserPassword)
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, session.ExpiresAt.Sub(session.IssuedAt))
	require.Equal(t, users.PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}, session.User)

	stored, err := f.sessions.Get(ctx, testSessionID)
	require.NoError(t, err)
	require.Equal(t, session.User, stored.User)
	require.NotEmpty(t, stored.Token)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantMsg  string
	}{
		{"missing name", "a@b.co", testUserPassword, "  ", "Please fill in all fields"},
		{"short name", "a@b.co", testUserPassword, "A", "Name must be at least 2 characters long"},
		{"bad email", "a@b", testUserPassword, "Al", "Please enter a valid email"},
		{"weak password", "a@b.co", "password", "Al", "Password must contain at least one uppercase letter"},
		{"no symbol", "a@b.co", "Password1", "Al", "Password must contain at least one special character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			_, err := f.service.Register(context.Background(), tt.email, tt.password, tt.userName)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			require.Equal(t, tt.wantMsg, apperrors.UserMessage(err))

			list, err := f.users.List(context.Background())
			require.NoError(t, err)
			require.Empty(t, list)
		})
	}
}

func TestRegisterDuplicateEmailIgnoresCase(t *testing.T) {
	f := setupTestFixture(t)
	f.registerTestUser(t)

	_, err := f.service.Register(context.Background(), "  ana.lopez@EXAMPLE.com ", "Other123$", "Someone")
	require.ErrorIs(t, err, apperrors.ErrConflict)

	list, err := f.users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestConcurrentRegistrationStoresOneUser(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.service.Register(ctx, "dup@example.com", testUserPassword, testUserName)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrConflict)
	}
	require.Equal(t, 1, succeeded)

	list, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.service.Login(ctx, testSessionID, "dup@example.com", testUserPassword)
	require.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	f := setupTestFixture(t)
	f.registerTestUser(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, testSessionID, "", testUserPassword)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.service.Login(ctx, testSessionID, "not-an-email", testUserPassword)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.service.Login(ctx, testSessionID, "nobody@example.com", testUserPassword)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, "No account exists with this email", apperrors.UserMessage(err))

	_, err = f.service.Login(ctx, testSessionID, testUserEmail, "Wrong123!")
	require.ErrorIs(t, err, apperrors.ErrAuth)

	_, err = f.service.Login(ctx, "", testUserEmail, testUserPassword)
	require.Error(t, err)

	_, err = f.sessions.Get(ctx, testSessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerTestUser(t)
		_, err := f.service.Login(ctx, testSessionID, testUserEmail, testUserPassword)
		require.NoError(t, err)

		f.now = f.now.Add(23 * time.Hour)
		session, err := f.service.Restore(ctx, testSessionID)
		require.NoError(t, err)
		require.Equal(t, "ana.lopez@example.com", session.User.Email)
	})

	t.Run("expired session is purged", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerTestUser(t)
		_, err := f.service.Login(ctx, testSessionID, testUserEmail, testUserPassword)
		require.NoError(t, err)

		f.now = f.now.Add(24*time.Hour + time.Second)
		_, err = f.service.Restore(ctx, testSessionID)
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)

		_, err = f.service.Restore(ctx, testSessionID)
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		keys, err := f.store.Keys(ctx, "auth_")
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("unparseable token is purged", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.sessions.Upsert(ctx, testSessionID, loginsession.Session{
			User:  users.PublicUser{ID: "u1"},
			Token: "forged.token.value",
		}))

		_, err := f.service.Restore(ctx, testSessionID)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		_, err = f.sessions.Get(ctx, testSessionID)
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("token of another user is purged", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerTestUser(t)
		_, err := f.service.Login(ctx, testSessionID, testUserEmail, testUserPassword)
		require.NoError(t, err)

		stored, err := f.sessions.Get(ctx, testSessionID)
		require.NoError(t, err)
		stored.User.ID = "someone-else"
		require.NoError(t, f.sessions.Upsert(ctx, testSessionID, stored))

		_, err = f.service.Restore(ctx, testSessionID)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("no session", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Restore(ctx, "unknown")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	f.registerTestUser(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, testSessionID, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, testSessionID))
	require.NoError(t, f.service.Logout(ctx, testSessionID))
	require.NoError(t, f.service.Logout(ctx, "never-logged-in"))

	_, err = f.service.Restore(ctx, testSessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong current password leaves storage untouched", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerTestUser(t)
		_, err := f.service.Login(ctx, testSessionID, testUserEmail, testUserPassword)
		require.NoError(t, err)

		before := f.storedUsers(t)
		err = f.service.UpdatePassword(ctx, testSessionID, "Wrong123!", "NewSecret1#")
		require.ErrorIs(t, err, apperrors.ErrAuth)
		require.Equal(t, before, f.storedUsers(t))
	})

	t.Run("weak new password leaves storage untouched", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerTestUser(t)
		_, err := f.service.Login(ctx, testSessionID, testUserEmail, testUserPassword)
		require.NoError(t, err)

		before := f.storedUsers(t)
		err = f.service.UpdatePassword(ctx, testSessionID, testUserPassword, "short")
		require.ErrorIs(t, err, apperrors.ErrValidation)
		require.Equal(t, before, f.storedUsers(t))
	})

	t.Run("requires a session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerTestUser(t)
		err := f.service.UpdatePassword(ctx, testSessionID, testUserPassword, "NewSecret1#")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("success only changes that user", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerTestUser(t)
		other, err := f.service.Register(ctx, "bo@example.com", "BoSecret1!", "Bo")
		require.NoError(t, err)

		_, err = f.service.Login(ctx, testSessionID, testUserEmail, testUserPassword)
		require.NoError(t, err)
		require.NoError(t, f.service.UpdatePassword(ctx, testSessionID, testUserPassword, "NewSecret1#"))

		_, err = f.service.Login(ctx, "s2", testUserEmail, testUserPassword)
		require.ErrorIs(t, err, apperrors.ErrAuth)
		_, err = f.service.Login(ctx, "s2", testUserEmail, "NewSecret1#")
		require.NoError(t, err)

		stillOther, err := f.users.GetByID(ctx, other.ID)
		require.NoError(t, err)
		require.Equal(t, other.PasswordHash, stillOther.PasswordHash)
	})
}

func TestPurgeExpiredSessions(t *testing.T) {
	f := setupTestFixture(t)
	f.registerTestUser(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "old", testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.now = f.now.Add(20 * time.Hour)
	_, err = f.service.Login(ctx, "fresh", testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, "auth_token/half", []byte("x")))

	f.now = f.now.Add(5 * time.Hour)
	purged, err := f.service.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, purged)

	ids, err := f.sessions.SessionIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"fresh"}, ids)
}
