package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"osapio-backend/internal/shared/apperr"
)

// tokenClaims mirrors the claim names of a Firebase ID token so that local
// tokens exercise the same mapping.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID        string        `json:"user_id,omitempty"`
	Email         string        `json:"email,omitempty"`
	PhoneNumber   string        `json:"phone_number,omitempty"`
	EmailVerified bool          `json:"email_verified"`
	Firebase      firebaseBlock `json:"firebase"`
}

type firebaseBlock struct {
	SignInProvider string `json:"sign_in_provider,omitempty"`
}

// JWTVerifier validates HS256 tokens signed with a shared secret. It backs
// local development and tests where no identity provider is reachable.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewJWTVerifier returns a verifier for the given secret.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("JWT_SECRET is required when AUTH_PROVIDER=jwt")
	}
	return &JWTVerifier{secret: []byte(secret), now: time.Now}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperr.Wrapf(ErrInvalidToken, "empty token")
	}
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Claims{}, apperr.Wrap(ErrInvalidToken, err)
	}

	uid := tc.Subject
	if uid == "" {
		uid = tc.UserID
	}
	if uid == "" {
		return Claims{}, apperr.Wrapf(ErrInvalidToken, "token has no subject")
	}
	return Claims{
		UID:           uid,
		Email:         tc.Email,
		PhoneNumber:   tc.PhoneNumber,
		EmailVerified: tc.EmailVerified,
		ProviderID:    tc.Firebase.SignInProvider,
	}, nil
}

// Issue signs a token for c that expires after ttl.
func (v *JWTVerifier) Issue(c Claims, ttl time.Duration) (string, error) {
	now := v.now()
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:        c.UID,
		Email:         c.Email,
		PhoneNumber:   c.PhoneNumber,
		EmailVerified: c.EmailVerified,
		Firebase:      firebaseBlock{SignInProvider: c.ProviderID},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(v.secret)
}

var _ Verifier = (*JWTVerifier)(nil)
