package services

import (
	"context"
	"fmt"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/errors"
	"pairchat/repositories"
)

type Token string

type IAuthService interface {
	Register(ctx context.Context, email, displayName, password string) (Token, domain.User, error)
	Login(ctx context.Context, email, password string) (Token, domain.User, error)
	UpdateProfile(ctx context.Context, userID string, displayName, statusText, avatarRef *string) (domain.User, error)
}

// AuthService owns credential verification and profile lifecycle. It also
// implements contract.IIdentityProvider: the rest of the core treats the
// user ids it hands out as opaque.
type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (Token, domain.User, error) {
	valReq := auth.RegisterRequest{
		Email:       email,
		DisplayName: displayName,
		Password:    password,
	}
	// Validate before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, displayName, hashedPassword)
	if err != nil {
		return "", domain.User{}, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Token, domain.User, error) {
	user, hash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Generic error to prevent user enumeration.
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, hash)
	if err != nil || !match {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, displayName, statusText, avatarRef *string) (domain.User, error) {
	if err := auth.ValidateProfileUpdate(auth.ProfileUpdateRequest{
		DisplayName: displayName,
		StatusText:  statusText,
	}); err != nil {
		return domain.User{}, err
	}
	return s.users.UpdateProfile(ctx, userID, displayName, statusText, avatarRef)
}

// Verify resolves a bearer token to a user id. Any token or lookup
// failure collapses into ErrAuthFailure.
func (s *AuthService) Verify(ctx context.Context, credential string) (string, error) {
	claims, err := s.tokens.Validate(credential)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrAuthFailure, err)
	}
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		return "", fmt.Errorf("%w: unknown subject", errors.ErrAuthFailure)
	}
	return claims.UserID, nil
}

// Lookup returns the profile behind a user id.
func (s *AuthService) Lookup(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}
