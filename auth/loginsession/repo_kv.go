package loginsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
	"github.com/jrsteele09/go-station-dashboard/users"
)

const (
	UserKeyPrefix  = "auth_user/"
	TokenKeyPrefix = "auth_token/"
)

var _ Repo = (*KVRepo)(nil)

// KVRepo stores the public user projection under auth_user/<session> and the
// raw token under auth_token/<session>.
type KVRepo struct {
	store kv.Store
}

func NewKVRepo(store kv.Store) *KVRepo {
	return &KVRepo{store: store}
}

func (r *KVRepo) Upsert(ctx context.Context, sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := kv.SetJSON(ctx, r.store, UserKeyPrefix+sessionID, session.User); err != nil {
		return fmt.Errorf("[KVRepo Upsert] user: %w", err)
	}
	if err := r.store.Set(ctx, TokenKeyPrefix+sessionID, []byte(session.Token)); err != nil {
		return fmt.Errorf("[KVRepo Upsert] token: %w", err)
	}
	return nil
}

func (r *KVRepo) Get(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, apperrors.ErrSessionNotFound
	}

	rawUser, err := r.store.Get(ctx, UserKeyPrefix+sessionID)
	if err != nil {
		return Session{}, notFound(err)
	}
	rawToken, err := r.store.Get(ctx, TokenKeyPrefix+sessionID)
	if err != nil {
		return Session{}, notFound(err)
	}

	var user users.PublicUser
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[KVRepo Get] stored user: %v", err)
	}
	return Session{User: user, Token: string(rawToken)}, nil
}

func (r *KVRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := r.store.Delete(ctx, UserKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("[KVRepo Delete] user: %w", err)
	}
	if err := r.store.Delete(ctx, TokenKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("[KVRepo Delete] token: %w", err)
	}
	return nil
}

// SessionIDs lists every session with at least one stored half.
func (r *KVRepo) SessionIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, prefix := range []string{UserKeyPrefix, TokenKeyPrefix} {
		keys, err := r.store.Keys(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("[KVRepo SessionIDs] %w", err)
		}
		for _, k := range keys {
			id := strings.TrimPrefix(k, prefix)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func notFound(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrSessionNotFound
	}
	return err
}
