package project

import "context"

// Repository provides persistence for the project collection. The store
// behind it degrades to memory-only on failure, so it reports no errors.
type Repository interface {
	All(ctx context.Context) []Project
	ReplaceAll(ctx context.Context, projects []Project)
	OpenMap(ctx context.Context) map[string]bool
	ReplaceOpenMap(ctx context.Context, open map[string]bool)
}
