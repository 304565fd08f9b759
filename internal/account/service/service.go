package service

import (
	"context"
	"errors"
	"time"

	"github.com/screentime-labs/tracker/backend/internal/account/domain"
	"github.com/screentime-labs/tracker/backend/internal/account/repository"
	"github.com/screentime-labs/tracker/backend/internal/common/clock"
	commoncrypto "github.com/screentime-labs/tracker/backend/internal/common/crypto"
	commonerrors "github.com/screentime-labs/tracker/backend/internal/common/errors"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
	"github.com/screentime-labs/tracker/backend/internal/observability/metrics"
)

type AccountService struct {
	repo        repository.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	tokens      *tokenIssuer
	log         *logger.Logger
}

type Deps struct {
	Repo        repository.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

func NewAccountService(deps Deps, jwtSecret string, tokenTTL time.Duration) *AccountService {
	return &AccountService{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		tokens:      &tokenIssuer{secret: []byte(jwtSecret), ttl: tokenTTL},
		log:         deps.Log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Account domain.Summary
	Token   string
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return AuthResult{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	account := domain.Account{
		ID:           domain.ID(id),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: username taken")
			return AuthResult{}, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_email_exists",
			}).Warn("register failed: email taken")
			return AuthResult{}, ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	token, err := s.tokens.issue(account, s.clock.Now())
	if err != nil {
		return AuthResult{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	metrics.AccountsRegistered.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": account.Username,
		"user_id":  string(account.ID),
		"action":   "register_success",
	}).Info("register success")

	return AuthResult{Account: account.Summary(), Token: token}, nil
}

func (s *AccountService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	account, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return AuthResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_lookup_failed",
		}).Errorf("login failed: %v", err)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	if err := s.hasher.Compare(account.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(account.ID),
			"action":  "login_bad_password",
		}).Warn("login failed: password mismatch")
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.issue(account, s.clock.Now())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return AuthResult{}, commonerrors.ErrServiceUnavailable.WithCause(err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(account.ID),
		"action":  "login_success",
	}).Info("login success")

	return AuthResult{Account: account.Summary(), Token: token}, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Summary, error) {
	summaries, err := s.repo.List(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_accounts_failed",
		}).Errorf("list accounts failed: %v", err)
		return nil, commonerrors.ErrServiceUnavailable.WithCause(err)
	}
	return summaries, nil
}
