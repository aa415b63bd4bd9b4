package cognito

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nvarela/go-userpool"
)

// API is the subset of the Cognito identity provider client the adapter uses.
type API interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	AdminConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.AdminConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminConfirmSignUpOutput, error)
	AdminInitiateAuth(ctx context.Context, params *cognitoidentityprovider.AdminInitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminInitiateAuthOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cognitoidentityprovider.AdminAddUserToGroupInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminAddUserToGroupOutput, error)
	AdminRemoveUserFromGroup(ctx context.Context, params *cognitoidentityprovider.AdminRemoveUserFromGroupInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminRemoveUserFromGroupOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cognitoidentityprovider.AdminUpdateUserAttributesInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminUpdateUserAttributesOutput, error)
}

// Provider implements userpool.CredentialProvider backed by a Cognito user
// pool. Credentials and group membership live entirely in Cognito.
type Provider struct {
	config Config
	api    API
	logger userpool.Logger
}

var _ userpool.CredentialProvider = (*Provider)(nil)

// New creates a Cognito-backed credential provider. When cfg.API is unset
// the default AWS credential chain is used to build the client.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	api := cfg.API
	if api == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("cognito: failed to load AWS config: %w", err)
		}
		api = cognitoidentityprovider.NewFromConfig(awsCfg, func(o *cognitoidentityprovider.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
	}

	logger := cfg.Logger
	if logger == nil {
		logger = userpool.DefaultLogger
	}

	return &Provider{
		config: cfg,
		api:    api,
		logger: logger,
	}, nil
}

// Register provisions the candidate in the user pool: sign up, confirm,
// attach the requested group, then authenticate for an initial token bundle.
// The returned ExternalID is Cognito's immutable user sub.
func (p *Provider) Register(ctx context.Context, candidate userpool.Candidate) (*userpool.Registration, error) {
	out, err := p.api.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(p.config.ClientID),
		Username: aws.String(candidate.Email),
		Password: aws.String(candidate.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(candidate.Email)},
			{Name: aws.String("name"), Value: aws.String(candidate.Name)},
		},
	})
	if err != nil {
		var exists *types.UsernameExistsException
		if stderrors.As(err, &exists) {
			return nil, accountExists(err)
		}
		return nil, providerFailure(err, "sign_up")
	}

	if _, err := p.api.AdminConfirmSignUp(ctx, &cognitoidentityprovider.AdminConfirmSignUpInput{
		UserPoolId: aws.String(p.config.UserPoolID),
		Username:   aws.String(candidate.Email),
	}); err != nil {
		return nil, providerFailure(err, "confirm_sign_up")
	}

	if _, err := p.api.AdminAddUserToGroup(ctx, &cognitoidentityprovider.AdminAddUserToGroupInput{
		UserPoolId: aws.String(p.config.UserPoolID),
		Username:   aws.String(candidate.Email),
		GroupName:  aws.String(string(candidate.Role)),
	}); err != nil {
		return nil, providerFailure(err, "group_add")
	}

	bundle, err := p.Authenticate(ctx, candidate)
	if err != nil {
		return nil, err
	}

	return &userpool.Registration{
		ExternalID: aws.ToString(out.UserSub),
		Bundle:     bundle,
	}, nil
}

// Authenticate exchanges the candidate's credentials for a token bundle
// using the admin user/password flow. Wrong credentials and unknown users
// both map to userpool.ErrCredentialsRejected.
func (p *Provider) Authenticate(ctx context.Context, candidate userpool.Candidate) (*userpool.TokenBundle, error) {
	out, err := p.api.AdminInitiateAuth(ctx, &cognitoidentityprovider.AdminInitiateAuthInput{
		AuthFlow:   types.AuthFlowTypeAdminUserPasswordAuth,
		ClientId:   aws.String(p.config.ClientID),
		UserPoolId: aws.String(p.config.UserPoolID),
		AuthParameters: map[string]string{
			"USERNAME": candidate.Email,
			"PASSWORD": candidate.Password,
		},
	})
	if err != nil {
		if isRejection(err) {
			return nil, credentialsRejected(err)
		}
		return nil, providerFailure(err, "initiate_auth")
	}

	res := out.AuthenticationResult
	if res == nil {
		// A nil result means the pool demanded a challenge we do not
		// support (MFA, forced password reset).
		return nil, providerFailure(
			fmt.Errorf("cognito: authentication returned a challenge: %s", out.ChallengeName),
			"initiate_auth",
		)
	}

	return &userpool.TokenBundle{
		AccessToken:  aws.ToString(res.AccessToken),
		ExpiresIn:    res.ExpiresIn,
		TokenType:    aws.ToString(res.TokenType),
		RefreshToken: aws.ToString(res.RefreshToken),
		IDToken:      aws.ToString(res.IdToken),
	}, nil
}

// UpdateProfile applies attribute and group changes to the remote identity.
// An attribute failure does not block group changes; the group move adds the
// new group before removing the old one so the identity is never groupless.
// A failed removal after a successful add leaves the identity in both
// groups, which is reported but never rolled back.
func (p *Provider) UpdateProfile(ctx context.Context, email string, changes userpool.ProfileChanges) error {
	var attrErr error
	if changes.Name != nil {
		if _, err := p.api.AdminUpdateUserAttributes(ctx, &cognitoidentityprovider.AdminUpdateUserAttributesInput{
			UserPoolId: aws.String(p.config.UserPoolID),
			Username:   aws.String(email),
			UserAttributes: []types.AttributeType{
				{Name: aws.String("name"), Value: aws.String(*changes.Name)},
			},
		}); err != nil {
			attrErr = err
			p.logger.Error("cognito attribute update failed for %s: %v", email, err)
		}
	}

	if changes.Group != nil && changes.Group.New != "" && changes.Group.New != changes.Group.Old {
		if _, err := p.api.AdminAddUserToGroup(ctx, &cognitoidentityprovider.AdminAddUserToGroupInput{
			UserPoolId: aws.String(p.config.UserPoolID),
			Username:   aws.String(email),
			GroupName:  aws.String(string(changes.Group.New)),
		}); err != nil {
			return providerFailure(err, "group_add")
		}

		if changes.Group.Old != "" {
			if _, err := p.api.AdminRemoveUserFromGroup(ctx, &cognitoidentityprovider.AdminRemoveUserFromGroupInput{
				UserPoolId: aws.String(p.config.UserPoolID),
				Username:   aws.String(email),
				GroupName:  aws.String(string(changes.Group.Old)),
			}); err != nil {
				return providerFailure(err, "group_remove").WithMetadata(map[string]any{
					"in_both_groups": true,
					"group_new":      string(changes.Group.New),
					"group_old":      string(changes.Group.Old),
				})
			}
		}
	}

	if attrErr != nil {
		return providerFailure(attrErr, "update_attributes")
	}
	return nil
}

func isRejection(err error) bool {
	var notAuthorized *types.NotAuthorizedException
	if stderrors.As(err, &notAuthorized) {
		return true
	}
	var notFound *types.UserNotFoundException
	return stderrors.As(err, &notFound)
}

func credentialsRejected(cause error) error {
	clone := userpool.ErrCredentialsRejected.Clone()
	clone.Source = cause
	return clone.WithMetadata(map[string]any{
		"provider": "cognito",
	})
}

func accountExists(cause error) error {
	clone := userpool.ErrAccountExists.Clone()
	clone.Source = cause
	return clone.WithMetadata(map[string]any{
		"provider": "cognito",
	})
}

func providerFailure(cause error, step string) *goerrors.Error {
	return userpool.WrapProviderFailure(cause, "cognito "+step+" failed").WithMetadata(map[string]any{
		"provider": "cognito",
		"step":     step,
	})
}
