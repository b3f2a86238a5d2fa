package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tryst-events/registration-service/internal/auth"
	"github.com/tryst-events/registration-service/internal/config"
	"github.com/tryst-events/registration-service/internal/domain"
	"github.com/tryst-events/registration-service/internal/events"
	"github.com/tryst-events/registration-service/internal/repository"
	apperrors "github.com/tryst-events/registration-service/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     auth.NewPasswordHasher(cfg.BcryptCost),
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL),
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// RegisterUser creates a new account. The entry number's uniqueness is left
// to the store; a violation comes back as a duplicate error.
func (s *AuthService) RegisterUser(ctx context.Context, name, entryNo, password string) (*domain.User, error) {
	if name == "" || entryNo == "" || password == "" {
		return nil, apperrors.NewValidationError(apperrors.MsgFieldsRequired)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		EntryNo:      entryNo,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntryNo) {
			return nil, apperrors.NewDuplicate(apperrors.MsgEntryNoExists, err)
		}
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserRegistered, user.ID,
		events.UserRegisteredPayload{EntryNo: user.EntryNo}))
	return user, nil
}

// LoginUser authenticates by entry number. Unknown users and wrong passwords
// produce the same error.
func (s *AuthService) LoginUser(ctx context.Context, entryNo, password string) (*domain.User, *domain.Session, error) {
	if entryNo == "" || password == "" {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	user, err := s.users.FindByEntryNo(ctx, entryNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	session, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func publish(ctx context.Context, d events.Dispatcher, logger *zap.Logger, event events.Event) {
	if d == nil {
		return
	}
	if err := d.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Error(err))
	}
}
