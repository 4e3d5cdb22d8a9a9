package identity

import (
	"context"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"osapio-backend/internal/shared/apperr"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier checks ID tokens with the Firebase Admin SDK.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// FirebaseOptions selects the project and service-account credentials.
// With no credentials the SDK falls back to application default credentials.
type FirebaseOptions struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
}

// NewFirebaseVerifier initializes the Admin SDK once.
func NewFirebaseVerifier(ctx context.Context, opts FirebaseOptions) (*FirebaseVerifier, error) {
	var clientOpts []option.ClientOption

	raw := []byte(strings.TrimSpace(opts.CredentialsJSON))
	if len(raw) == 0 && strings.TrimSpace(opts.CredentialsFile) != "" {
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firebase credentials: %w", err)
		}
		raw = data
	}
	if len(raw) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, raw, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parse firebase credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	}

	var fbConfig *firebase.Config
	if opts.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: opts.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify validates signature, audience and expiry in one synchronous call.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperr.Wrapf(ErrInvalidToken, "empty token")
	}
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Claims{}, apperr.Wrap(ErrInvalidToken, err)
	}
	return claimsFromFirebase(tok)
}

func claimsFromFirebase(tok *auth.Token) (Claims, error) {
	if tok == nil || tok.UID == "" {
		return Claims{}, apperr.Wrapf(ErrInvalidToken, "token has no subject")
	}
	c := Claims{
		UID:           tok.UID,
		Email:         stringClaim(tok.Claims, "email"),
		PhoneNumber:   stringClaim(tok.Claims, "phone_number"),
		EmailVerified: boolClaim(tok.Claims, "email_verified"),
		ProviderID:    tok.Firebase.SignInProvider,
	}
	return c, nil
}

var _ Verifier = (*FirebaseVerifier)(nil)
