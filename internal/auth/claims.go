package auth

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/xiaot623/audrey/internal/domain"
)

// tokenClaims is the subset of an Entra ID v2.0 access token we read.
type tokenClaims struct {
	jwt.RegisteredClaims
	ObjectID          string     `json:"oid,omitempty"`
	Name              string     `json:"name,omitempty"`
	PreferredUsername string     `json:"preferred_username,omitempty"`
	Scope             scopeClaim `json:"scp,omitempty"`
}

// scopeClaim decodes scp as either a space-delimited string or a string array.
type scopeClaim []string

func (s *scopeClaim) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = strings.Fields(str)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

func (c *tokenClaims) claimSet() *domain.ClaimSet {
	cs := &domain.ClaimSet{
		Subject:           c.ObjectID,
		Name:              c.Name,
		PreferredUsername: c.PreferredUsername,
		Scopes:            []string(c.Scope),
		Issuer:            c.Issuer,
		Audience:          []string(c.Audience),
	}
	if cs.Subject == "" {
		cs.Subject = c.RegisteredClaims.Subject
	}
	if c.ExpiresAt != nil {
		cs.ExpiresAt = c.ExpiresAt.Time
	}
	return cs
}
