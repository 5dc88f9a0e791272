package profile

import "context"

// Repository persists the singleton profile.
type Repository interface {
	Load(ctx context.Context) Profile
	Save(ctx context.Context, p Profile)
}
