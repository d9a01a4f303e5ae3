package users

import (
	"context"
	"reflect"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeBearer is the token type reported on successful logins
const TokenTypeBearer = "Bearer"

// LoginResult is what a successful login returns to the caller
type LoginResult struct {
	Token     string `json:"token"`
	TokenType string `json:"type"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Auther turns credentials into bearer tokens and tokens back into proof
// of validity. Each call is independent; no state persists between
// attempts.
type Auther struct {
	provider        IdentityProvider
	signingKey      []byte
	tokenExpiration int64
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		issuer:          opts.GetIssuer(),
		audience:        opts.GetAudience(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and mints a bearer token. Failures are
// either ErrInvalidCredentials, ErrAccountInactive, or an infrastructure
// error from the store.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		TokenType: TokenTypeBearer,
		UserID:    identity.ID(),
		Email:     identity.Email(),
		Role:      identity.Role(),
	}, nil
}

// ValidateToken reports whether the token's signature and expiry check out
// against the configured signing key. It is intentionally total: every
// failure collapses into false and nothing propagates past this boundary.
func (s *Auther) ValidateToken(token string) bool {
	if token == "" {
		return false
	}

	if _, err := s.tokenService.Validate(token); err != nil {
		s.logger.Debug("ValidateToken rejected token", "error", err)
		return false
	}

	return true
}

// TokenClaims validates the token and returns its structured claims.
// Unlike ValidateToken it surfaces the failure reason.
func (s *Auther) TokenClaims(token string) (AuthClaims, error) {
	return s.tokenService.Validate(token)
}

var (
	_ Authenticator = (*Auther)(nil)
	_ jwt.Claims    = (*JWTClaims)(nil)
)
