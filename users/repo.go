package users

import "context"

// UserRepo persists registered users. Only Create enforces email uniqueness.
type UserRepo interface {
	// Create stores a new user, failing with ErrConflict when the email is taken.
	Create(ctx context.Context, user *User) error
	Upsert(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
