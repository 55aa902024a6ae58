// Package auth validates identity-provider bearer tokens and resolves the caller.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/xiaot623/audrey/internal/domain"
	"github.com/xiaot623/audrey/internal/policy"
)

const (
	// DefaultAuthorityHost is the Entra ID login host.
	DefaultAuthorityHost = "https://login.microsoftonline.com"
	// DefaultRequiredScope is the delegated scope every chat caller must hold.
	DefaultRequiredScope = "access_as_user"

	truncatedTokenLen = 20
)

// Config identifies the tenant and API registration tokens must be issued for.
type Config struct {
	TenantID      string
	ClientID      string
	AuthorityHost string
	RequiredScope string
}

func (c Config) authority() string {
	host := c.AuthorityHost
	if host == "" {
		host = DefaultAuthorityHost
	}
	return strings.TrimSuffix(host, "/") + "/" + c.TenantID
}

// JWKSURL is the tenant's key discovery endpoint.
func (c Config) JWKSURL() string {
	return c.authority() + "/discovery/v2.0/keys"
}

// Issuer is the expected iss claim of v2.0 tokens.
func (c Config) Issuer() string {
	return c.authority() + "/v2.0"
}

func (c Config) requiredScope() string {
	if c.RequiredScope == "" {
		return DefaultRequiredScope
	}
	return c.RequiredScope
}

// ScopeChecker decides whether a token's scopes satisfy the required scope.
type ScopeChecker interface {
	HasScope(ctx context.Context, in policy.ScopeInput) (bool, error)
}

// Validator verifies bearer tokens against the identity provider's signing keys.
type Validator struct {
	cfg    Config
	keys   KeySource
	scopes ScopeChecker
	parser *jwt.Parser
	logger *slog.Logger
}

// NewValidator creates a validator. keys and scopes are required.
func NewValidator(cfg Config, keys KeySource, scopes ScopeChecker, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		cfg:    cfg,
		keys:   keys,
		scopes: scopes,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
		logger: logger,
	}
}

// Validate verifies credential and returns its claims.
// Failures are *domain.AuthError: 403 when only the scope is missing, 401 otherwise.
func (v *Validator) Validate(ctx context.Context, credential string) (*domain.ClaimSet, error) {
	if credential == "" {
		return nil, domain.NewUnauthorized("Not authenticated", nil)
	}

	claims := &tokenClaims{}
	var keyErr error
	_, err := v.parser.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}
		key, err := v.keys.SigningKey(ctx, kid)
		if err != nil {
			keyErr = err
			return nil, err
		}
		return key, nil
	})
	if err != nil {
		return nil, v.classify(credential, err, keyErr)
	}

	if !claims.VerifyAudience(v.cfg.ClientID, true) {
		return nil, domain.NewUnauthorized("Invalid token: Invalid audience", nil)
	}
	if !claims.VerifyIssuer(v.cfg.Issuer(), true) {
		return nil, domain.NewUnauthorized("Invalid token: Invalid issuer", nil)
	}

	cs := claims.claimSet()
	allowed, err := v.scopes.HasScope(ctx, policy.ScopeInput{
		Subject:       cs.Subject,
		Scopes:        cs.Scopes,
		RequiredScope: v.cfg.requiredScope(),
	})
	if err != nil {
		return nil, domain.NewUnauthorized(fmt.Sprintf("Authentication error: %v", err), err)
	}
	if !allowed {
		return nil, domain.NewForbidden("Token does not have required scope")
	}
	return cs, nil
}

func (v *Validator) classify(credential string, err, keyErr error) *domain.AuthError {
	if keyErr != nil {
		return domain.NewUnauthorized(fmt.Sprintf("Authentication error: %v", keyErr), keyErr)
	}

	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return domain.NewUnauthorized(fmt.Sprintf("Authentication error: %v", err), err)
	}

	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		v.logger.Error("token signature verification failed",
			slog.String("error", err.Error()),
			slog.String("truncated", TruncateToken(credential)),
		)
		return domain.NewUnauthorized("Invalid token: Signature verification failed", err)
	}
	return domain.NewUnauthorized(fmt.Sprintf("Invalid token: %v", err), err)
}

// TruncateToken keeps only a short prefix of a credential for diagnostics.
func TruncateToken(credential string) string {
	n := truncatedTokenLen
	if len(credential) <= n {
		n = len(credential) / 2
	}
	return credential[:n] + "... (truncated)"
}

// ExtractBearer returns the credential of an "Authorization: Bearer" header value.
func ExtractBearer(header string) (string, error) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(credential) == "" {
		return "", domain.NewUnauthorized("Not authenticated", nil)
	}
	return strings.TrimSpace(credential), nil
}
