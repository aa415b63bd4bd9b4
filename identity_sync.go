package userpool

import (
	"context"
	"strings"
)

// AuthOutcome is the result of the registration/login boundary: the token
// bundle issued by the provider, the local record it corresponds to, and
// which path ran.
type AuthOutcome struct {
	Bundle     *TokenBundle `json:"bundle,omitempty"`
	Record     *UserRecord  `json:"record,omitempty"`
	Registered bool         `json:"registered"`
}

// IdentitySync drives the local store and the credential provider to a
// consistent result on an authentication attempt, deciding create-vs-login
// by the presence of a local record.
//
// The dual write on the registration path (local insert, then provider
// register) is sequential, not transactional: a provider failure after a
// successful insert leaves a local record with no external identity. That
// window is accepted and reported rather than compensated; see the error
// metadata on the register path.
type IdentitySync struct {
	repo        RepositoryManager
	credentials CredentialProvider
	logger      Logger
	activity    ActivitySink
}

// NewIdentitySync returns a coordinator over the given stores.
func NewIdentitySync(repo RepositoryManager, credentials CredentialProvider) *IdentitySync {
	return &IdentitySync{
		repo:        repo,
		credentials: credentials,
		logger:      defLogger{},
	}
}

func (s *IdentitySync) WithLogger(logger Logger) *IdentitySync {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink attaches a best-effort audit sink for registration and
// login events.
func (s *IdentitySync) WithActivitySink(sink ActivitySink) *IdentitySync {
	s.activity = sink
	return s
}

// AuthenticateOrRegister looks the candidate up by email and either
// provisions a new identity in both stores or authenticates the existing
// one. The operation is not idempotent across concurrent duplicate
// registrations; the store's unique-email constraint resolves the race and
// the loser surfaces as ErrAccountExists.
func (s *IdentitySync) AuthenticateOrRegister(ctx context.Context, candidate Candidate) (*AuthOutcome, error) {
	candidate.Email = strings.TrimSpace(candidate.Email)

	record, err := s.repo.Records().FindByEmail(ctx, candidate.Email)
	switch {
	case err == nil:
		return s.authenticate(ctx, candidate, record)
	case IsRecordNotFound(err):
		return s.register(ctx, candidate)
	default:
		return nil, err
	}
}

func (s *IdentitySync) register(ctx context.Context, candidate Candidate) (*AuthOutcome, error) {
	record := &UserRecord{
		Name:        candidate.Name,
		Email:       candidate.Email,
		Role:        candidate.Role,
		IsOnboarded: false,
	}

	record, err := s.repo.Records().Insert(ctx, record)
	if err != nil {
		// A racing registration for the same email lost to the unique
		// constraint; surface it as a duplicate, not a server fault.
		if IsAlreadyExists(err) {
			s.logger.Info("registration for %s lost duplicate-email race", candidate.Email)
			return nil, err
		}
		return nil, err
	}

	registration, err := s.credentials.Register(ctx, candidate)
	if err != nil {
		// The local record now has no external identity. No compensation
		// runs here; the metadata lets callers tell this state apart from
		// "nothing changed".
		s.logger.Error("provider registration for %s failed after local insert: %v",
			candidate.Email, err)
		return nil, WrapProviderFailure(err, "identity registration failed").
			WithMetadata(map[string]any{
				"email":                candidate.Email,
				"local_record_created": true,
			})
	}

	if registration.ExternalID != "" {
		if err := s.repo.Records().LinkExternalID(ctx, candidate.Email, registration.ExternalID); err != nil {
			s.logger.Warn("failed to link external identity for %s: %v", candidate.Email, err)
		} else {
			record.ExternalID = registration.ExternalID
		}
	}

	emitActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventRegistered,
		Email:     candidate.Email,
		Metadata:  map[string]any{"role": string(candidate.Role)},
	})

	return &AuthOutcome{
		Bundle:     registration.Bundle,
		Record:     record,
		Registered: true,
	}, nil
}

func (s *IdentitySync) authenticate(ctx context.Context, candidate Candidate, record *UserRecord) (*AuthOutcome, error) {
	bundle, err := s.credentials.Authenticate(ctx, candidate)
	if err != nil {
		if IsCredentialsRejected(err) {
			emitActivity(ctx, s.activity, s.logger, ActivityEvent{
				EventType: ActivityEventLoginRejected,
				Email:     candidate.Email,
			})
			return nil, err
		}
		return nil, WrapProviderFailure(err, "identity authentication failed")
	}

	emitActivity(ctx, s.activity, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Email:     candidate.Email,
	})

	return &AuthOutcome{
		Bundle:     bundle,
		Record:     record,
		Registered: false,
	}, nil
}
