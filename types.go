package users

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of a verified account identity
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ValidateToken(token string) bool
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	// GetTokenExpiration returns the token validity window in milliseconds.
	GetTokenExpiration() int64
	GetIssuer() string
	GetAudience() []string
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(logLine("[ERR] USERS", msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(logLine("[WRN] USERS", msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(logLine("[INF] USERS", msg, args))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(logLine("[DBG] USERS", msg, args))
}

// logLine renders slog-style key/value pairs; a trailing unpaired arg is
// printed as-is.
func logLine(prefix, msg string, args []any) string {
	line := prefix + " " + msg
	i := 0
	for ; i+1 < len(args); i += 2 {
		line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	if i < len(args) {
		line += fmt.Sprintf(" %v", args[i])
	}
	return line
}
