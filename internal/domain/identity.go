package domain

import "time"

// ClaimSet is the verified payload of a bearer token.
type ClaimSet struct {
	Subject           string
	Name              string
	PreferredUsername string
	Scopes            []string
	Issuer            string
	Audience          []string
	ExpiresAt         time.Time
}

// HasScope reports whether scope was granted.
func (c *ClaimSet) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// UserIdentity is the request-scoped caller derived from a ClaimSet.
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Anonymous reports whether no caller was resolved, as in the open variant.
func (u UserIdentity) Anonymous() bool {
	return u.ID == "" && u.Name == "" && u.Email == ""
}
