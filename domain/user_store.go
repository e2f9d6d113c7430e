package domain

import "context"

type UserStore interface {
	// GetByEmail returns (nil, nil) when no user exists for the email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
}
