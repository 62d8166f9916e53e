package identity

import "context"

// ProfileStore reads caller profiles. This pipeline never mutates them.
type ProfileStore interface {
	FindByID(ctx context.Context, userID string) (*Profile, error)
	// ListAdmins returns all profiles with role admin or super_admin.
	ListAdmins(ctx context.Context) ([]Profile, error)
}
