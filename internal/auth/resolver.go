package auth

import "github.com/xiaot623/audrey/internal/domain"

// ResolveIdentity projects a verified claim set onto the caller identity.
// Missing claims become empty strings.
func ResolveIdentity(claims *domain.ClaimSet) domain.UserIdentity {
	if claims == nil {
		return domain.UserIdentity{}
	}
	return domain.UserIdentity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.PreferredUsername,
	}
}
