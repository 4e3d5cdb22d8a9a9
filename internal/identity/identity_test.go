package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFirebase struct {
	tok *auth.Token
	err error
}

func (s stubFirebase) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return s.tok, s.err
}

func TestFirebaseVerifierMapsClaims(t *testing.T) {
	tok := &auth.Token{
		UID: "uid-123",
		Claims: map[string]interface{}{
			"email":          "ana@example.com",
			"phone_number":   "+15550100",
			"email_verified": true,
		},
	}
	tok.Firebase.SignInProvider = "google.com"

	v := &FirebaseVerifier{client: stubFirebase{tok: tok}}
	c, err := v.Verify(context.Background(), "raw")
	require.NoError(t, err)
	assert.Equal(t, Claims{
		UID:           "uid-123",
		Email:         "ana@example.com",
		PhoneNumber:   "+15550100",
		EmailVerified: true,
		ProviderID:    "google.com",
	}, c)
}

func TestFirebaseVerifierFailsClosed(t *testing.T) {
	v := &FirebaseVerifier{client: stubFirebase{err: errors.New("ID token has expired")}}

	_, err := v.Verify(context.Background(), "raw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = v.Verify(context.Background(), " ")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	v = &FirebaseVerifier{client: stubFirebase{tok: &auth.Token{}}}
	_, err = v.Verify(context.Background(), "raw")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTVerifierRoundTrip(t *testing.T) {
	v, err := NewJWTVerifier("s3cret")
	require.NoError(t, err)

	token, err := v.Issue(Claims{UID: "u-1", Email: "a@b.c", EmailVerified: true, ProviderID: "password"}, time.Hour)
	require.NoError(t, err)

	c, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UID)
	assert.Equal(t, "a@b.c", c.Email)
	assert.True(t, c.EmailVerified)
	assert.Equal(t, "password", c.ProviderID)
}

func TestJWTVerifierRejects(t *testing.T) {
	v, err := NewJWTVerifier("s3cret")
	require.NoError(t, err)
	other, err := NewJWTVerifier("different")
	require.NoError(t, err)

	expired, err := v.Issue(Claims{UID: "u-1"}, -time.Minute)
	require.NoError(t, err)
	forged, err := other.Issue(Claims{UID: "u-1"}, time.Hour)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix()}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": expired,
		"forged":  forged,
		"no exp":  noExp,
		"none":    noneAlg,
		"garbage": "not-a-jwt",
	} {
		_, err := v.Verify(context.Background(), token)
		assert.Truef(t, errors.Is(err, ErrInvalidToken), "%s: expected ErrInvalidToken, got %v", name, err)
	}
}

func TestNewJWTVerifierRequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("")
	require.Error(t, err)
}
