package userpool_test

import (
	"context"

	"github.com/nvarela/go-userpool"
	"github.com/stretchr/testify/mock"
)

// MockCredentialProvider is a testify mock of userpool.CredentialProvider.
type MockCredentialProvider struct {
	mock.Mock
}

func (m *MockCredentialProvider) Register(ctx context.Context, candidate userpool.Candidate) (*userpool.Registration, error) {
	args := m.Called(ctx, candidate)
	if reg := args.Get(0); reg != nil {
		return reg.(*userpool.Registration), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialProvider) Authenticate(ctx context.Context, candidate userpool.Candidate) (*userpool.TokenBundle, error) {
	args := m.Called(ctx, candidate)
	if bundle := args.Get(0); bundle != nil {
		return bundle.(*userpool.TokenBundle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialProvider) UpdateProfile(ctx context.Context, email string, changes userpool.ProfileChanges) error {
	args := m.Called(ctx, email, changes)
	return args.Error(0)
}

// MockTokenValidator is a testify mock of userpool.TokenValidator.
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) Validate(tokenString string) (userpool.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(userpool.AuthClaims), args.Error(1)
	}
	return nil, args.Error(1)
}
