package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// ErrKeyNotFound is returned when the key set has no key with the token's kid.
var ErrKeyNotFound = errors.New("signing key not found")

// KeySource resolves the public key that signed a token.
type KeySource interface {
	SigningKey(ctx context.Context, kid string) (interface{}, error)
}

// JWKSKeySource fetches the identity provider's published key set on every lookup.
type JWKSKeySource struct {
	url        string
	httpClient *http.Client
}

// NewJWKSKeySource creates a key source reading the JWKS document at url.
func NewJWKSKeySource(url string, httpClient *http.Client) *JWKSKeySource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &JWKSKeySource{url: url, httpClient: httpClient}
}

// URL returns the JWKS document location.
func (s *JWKSKeySource) URL() string {
	return s.url
}

// SigningKey fetches the key set and returns the RSA public key with the given kid.
func (s *JWKSKeySource) SigningKey(ctx context.Context, kid string) (interface{}, error) {
	set, err := jwk.Fetch(ctx, s.url, jwk.WithHTTPClient(s.httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signing keys: %w", err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}

	var raw interface{}
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("failed to export signing key %q: %w", kid, err)
	}
	pub, ok := raw.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signing key %q is %T, want RSA public key", kid, raw)
	}
	return pub, nil
}
