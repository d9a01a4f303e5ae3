package users_test

import (
	"context"

	users "github.com/lmra/go-users"
	"github.com/stretchr/testify/mock"
)

// TestIdentity is a simple implementation of the Identity interface
type TestIdentity struct {
	id    string
	email string
	role  string
}

func (t TestIdentity) ID() string    { return t.id }
func (t TestIdentity) Email() string { return t.email }
func (t TestIdentity) Role() string  { return t.role }

// MockIdentityProvider implements users.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (users.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(users.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByEmail(ctx context.Context, email string) (users.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(users.Identity), args.Error(1)
}

// MockConfig implements users.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockAuthenticator implements users.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*users.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) ValidateToken(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return("test-signing-key")
	mockConfig.On("GetTokenExpiration").Return(int64(3_600_000))
	mockConfig.On("GetIssuer").Return("test-issuer")
	mockConfig.On("GetAudience").Return([]string{"test:audience"})
	return mockConfig
}
