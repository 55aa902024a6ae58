// Package authtest runs a fake identity provider for tests.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TenantID = "tenant-1"
	ClientID = "api-client-1"
	KeyID    = "key-1"
)

// Provider publishes a JWKS document and signs tokens with the matching key.
type Provider struct {
	Server *httptest.Server
	Key    *rsa.PrivateKey

	fetches atomic.Int64
}

// NewProvider starts a fake provider serving /{tenant}/discovery/v2.0/keys.
func NewProvider(t *testing.T) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	p := &Provider{Key: key}
	mux := http.NewServeMux()
	mux.HandleFunc("/"+TenantID+"/discovery/v2.0/keys", func(w http.ResponseWriter, r *http.Request) {
		p.fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]string{jwkFor(&key.PublicKey, KeyID)},
		})
	})
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// AuthorityHost is the base URL to configure as the authority.
func (p *Provider) AuthorityHost() string {
	return p.Server.URL
}

// Issuer is the iss claim the validator expects.
func (p *Provider) Issuer() string {
	return p.Server.URL + "/" + TenantID + "/v2.0"
}

// Fetches counts JWKS requests served.
func (p *Provider) Fetches() int64 {
	return p.fetches.Load()
}

// Claims returns a valid claim map carrying the given scp value.
func (p *Provider) Claims(scp interface{}) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":                p.Issuer(),
		"aud":                ClientID,
		"sub":                "subject-1",
		"oid":                "object-1",
		"name":               "Ada Lovelace",
		"preferred_username": "ada@example.com",
		"scp":                scp,
		"iat":                now.Unix(),
		"nbf":                now.Add(-time.Minute).Unix(),
		"exp":                now.Add(time.Hour).Unix(),
	}
}

// Sign signs claims with the provider key under kid.
func (p *Provider) Sign(t *testing.T, claims jwt.MapClaims, kid string) string {
	t.Helper()
	return SignWith(t, p.Key, claims, kid)
}

// SignWith signs claims with an arbitrary RSA key.
func SignWith(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// ValidToken signs a token holding the access_as_user scope.
func (p *Provider) ValidToken(t *testing.T) string {
	t.Helper()
	return p.Sign(t, p.Claims("openid access_as_user"), KeyID)
}

func jwkFor(pub *rsa.PublicKey, kid string) map[string]string {
	return map[string]string{
		"kty": "RSA",
		"use": "sig",
		"alg": "RS256",
		"kid": kid,
		"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}
