package loginsession

import (
	"context"

	"github.com/jrsteele09/go-station-dashboard/users"
)

// Session is what a browser session holds after a successful login.
type Session struct {
	User  users.PublicUser
	Token string
}

type Repo interface {
	Upsert(ctx context.Context, sessionID string, session Session) error
	// Get fails with ErrSessionNotFound when either half of the session is missing
	Get(ctx context.Context, sessionID string) (Session, error)
	// Delete removes both halves and succeeds when nothing is stored
	Delete(ctx context.Context, sessionID string) error
	SessionIDs(ctx context.Context) ([]string, error)
}
