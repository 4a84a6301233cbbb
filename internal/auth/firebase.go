// Package auth verifies Firebase ID tokens.
package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuerPrefix = "https://securetoken.google.com/"

var ErrInvalidToken = errors.New("invalid firebase id token")

// Identity is what the API knows about a signed-in user.
type Identity struct {
	UID      string
	Email    string
	Name     string
	Provider string // firebase.sign_in_provider, e.g. "password", "google.com"
}

type firebaseClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Name     string `json:"name"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
}

// KeySource resolves the RSA key for a token's "kid" header.
type KeySource interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

type Verifier struct {
	projectID string
	keys      KeySource
	now       func() time.Time
}

func NewVerifier(projectID string, keys KeySource) *Verifier {
	return &Verifier{projectID: projectID, keys: keys, now: time.Now}
}

// Verify checks signature, audience, issuer and lifetime of raw.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if v.projectID == "" {
		return nil, fmt.Errorf("%w: FIREBASE_PROJECT_ID not configured", ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(v.now),
	)

	var claims firebaseClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		return v.keys.PublicKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || len(claims.Subject) > 128 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return &Identity{
		UID:      claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Provider: claims.Firebase.SignInProvider,
	}, nil
}

// StaticKeys is a fixed kid → key set.
type StaticKeys map[string]*rsa.PublicKey

func (s StaticKeys) PublicKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if k, ok := s[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}
