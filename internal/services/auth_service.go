package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-tracker/internal/models"
	"github.com/adanyl0v/task-tracker/internal/passwords"
	"github.com/adanyl0v/task-tracker/internal/storage"
	"github.com/adanyl0v/task-tracker/internal/tokens"
)

type authServiceImpl struct {
	logger         zerolog.Logger
	store          storage.Store
	hasher         passwords.Hasher
	tokens         tokens.Service
	accessTokenTTL time.Duration
}

func NewAuthService(
	logger zerolog.Logger,
	store storage.Store,
	hasher passwords.Hasher,
	tokenService tokens.Service,
	accessTokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:         logger,
		store:          store,
		hasher:         hasher,
		tokens:         tokenService,
		accessTokenTTL: accessTokenTTL,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, params.Username, passwordHash)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.logger.Error().
				Str("username", params.Username).
				Msg("user with this username already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("inserted user")

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("registered user")
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(ctx, params.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.hasher.VerifyDummy(params.Password)
			s.logger.Error().
				Str("username", params.Username).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("username", params.Username).
			Msg("failed to select user by username")
		return nil, err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Msg("selected user")

	if !s.hasher.Verify(params.Password, user.PasswordHash) {
		s.logger.Error().
			Int64("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokens.Issue(user.Username, s.accessTokenTTL)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Time("expires_at", expiresAt).
		Msg("logged in")
	return &LoginResult{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	username, err := s.tokens.Resolve(token)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to resolve token")
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("username", username).
				Msg("token subject not found")
			return nil, ErrInvalidToken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select user by username")
		return nil, err
	}

	s.logger.Debug().
		Int64("user_id", user.ID).
		Msg("authenticated user")
	return user, nil
}
