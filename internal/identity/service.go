package identity

import (
	"context"

	dErrors "sentinela/pkg/domain-errors"
)

// Service is the access gate: it turns an authenticated user ID into a
// profile and enforces role membership for privileged operations.
type Service struct {
	profiles ProfileStore
}

func NewService(profiles ProfileStore) *Service {
	return &Service{profiles: profiles}
}

// RequireRole loads the caller's profile and checks membership in the allowed
// set. The profile is re-read on every call, never cached, so role changes
// take effect immediately at the cost of one lookup per privileged request.
func (s *Service) RequireRole(ctx context.Context, userID string, allowed ...Role) (*Profile, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "access restricted to administrators")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "profile lookup failed", err)
	}
	if !profile.Role.In(allowed...) {
		return nil, dErrors.New(dErrors.CodeForbidden, "access restricted to administrators")
	}
	return profile, nil
}

// AdminRecipients returns the current admin/super_admin profiles for alert
// fan-out.
func (s *Service) AdminRecipients(ctx context.Context) ([]Profile, error) {
	return s.profiles.ListAdmins(ctx)
}
