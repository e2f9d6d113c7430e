package domain

import "context"

type ListingCache interface {
	PostRecent(ctx context.Context, vehicles []*Vehicle) error
	GetRecent(ctx context.Context) ([]*Vehicle, error)
	InvalidateRecent(ctx context.Context) error
}
