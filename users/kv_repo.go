package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-station-dashboard/internal/errors"
	"github.com/jrsteele09/go-station-dashboard/internal/storage/kv"
)

// RegisteredUsersKey holds the JSON array of every registered user.
const RegisteredUsersKey = "registered_users"

var _ UserRepo = (*KVRepo)(nil)

// storedUser is the persisted shape; unlike User it carries the hash.
type storedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// KVRepo keeps all users in one key-value entry. Read-modify-write cycles are
// serialised by lock.
type KVRepo struct {
	store kv.Store
	lock  sync.RWMutex
}

func NewKVRepo(store kv.Store) *KVRepo {
	return &KVRepo{store: store}
}

// Create checks the email and appends the user under one write lock, so
// concurrent registrations of the same email store exactly one record.
func (r *KVRepo) Create(ctx context.Context, user *User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return fmt.Errorf("[KVRepo Create] %w", err)
	}
	for _, u := range all {
		if strings.EqualFold(u.Email, strings.TrimSpace(user.Email)) {
			return apperrors.Wrapf(apperrors.ErrConflict, "[KVRepo Create] email %s", user.Email)
		}
	}

	all = append(all, toStored(user))
	if err := kv.SetJSON(ctx, r.store, RegisteredUsersKey, all); err != nil {
		return fmt.Errorf("[KVRepo Create] %w", err)
	}
	return nil
}

func (r *KVRepo) Upsert(ctx context.Context, user *User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return fmt.Errorf("[KVRepo Upsert] %w", err)
	}

	record := toStored(user)

	replaced := false
	for i := range all {
		if all[i].ID == user.ID {
			all[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, record)
	}

	if err := kv.SetJSON(ctx, r.store, RegisteredUsersKey, all); err != nil {
		return fmt.Errorf("[KVRepo Upsert] %w", err)
	}
	return nil
}

func (r *KVRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.find(ctx, func(u storedUser) bool {
		return strings.EqualFold(u.Email, strings.TrimSpace(email))
	}, email)
}

func (r *KVRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.find(ctx, func(u storedUser) bool { return u.ID == id }, id)
}

// List returns users in registration order.
func (r *KVRepo) List(ctx context.Context) ([]*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all, err := r.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("[KVRepo List] %w", err)
	}
	out := make([]*User, 0, len(all))
	for _, u := range all {
		out = append(out, u.toUser())
	}
	return out, nil
}

func (r *KVRepo) find(ctx context.Context, match func(storedUser) bool, what string) (*User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if match(u) {
			return u.toUser(), nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", what)
}

// load treats a missing entry as no users
func (r *KVRepo) load(ctx context.Context) ([]storedUser, error) {
	all, err := kv.GetJSON[[]storedUser](ctx, r.store, RegisteredUsersKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return []storedUser{}, nil
	}
	if err != nil {
		return nil, err
	}
	return all, nil
}

func toStored(user *User) storedUser {
	return storedUser{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		CreatedAt:    user.CreatedAt,
	}
}

func (u storedUser) toUser() *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		CreatedAt:    u.CreatedAt,
	}
}
