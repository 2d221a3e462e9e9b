package service

import "github.com/cinefind/moviesearch/internal/core/domain"

// Authorize reports whether claims carry one of the allowed roles. It has no
// side effects; callers compose it per endpoint.
func Authorize(claims *domain.Claims, allowed ...domain.Role) error {
	if claims == nil {
		return domain.ErrInvalidSession
	}
	if !claims.HasRole(allowed...) {
		return domain.ErrForbidden
	}
	return nil
}
