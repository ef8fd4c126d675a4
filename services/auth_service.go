package services

import (
	"fmt"

	"duochat/auth"
	"duochat/errors"
	"duochat/repositories"
)

type IAuthService interface {
	Register(username, password string) (string, error)
	Login(username, password string) (string, Token, error)
	Exists(username string) bool
	IdentityFromToken(token string) (string, error)
}

type Token string

// AuthService implements the identity store collaborator: registration,
// credential verification, and session token issuance.
type AuthService struct {
	userRepository repositories.IUserRepository
	issuer         *auth.TokenIssuer
}

func NewAuthService(repo repositories.IUserRepository, issuer *auth.TokenIssuer) *AuthService {
	return &AuthService{userRepository: repo, issuer: issuer}
}

// Register validates the username and password, hashes the password, and
// persists the identity. It returns the sanitized username.
func (s *AuthService) Register(username, password string) (string, error) {
	username = auth.SanitizeUsername(username)

	// Validate before any expensive cryptographic operation
	if err := auth.ValidateRegister(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return "", err
	}

	// Hashing happens here so the repository never sees a plain password
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	if err := s.userRepository.CreateUser(username, hashedPassword); err != nil {
		return "", err // propagates ErrUserAlreadyExists when the name is taken
	}
	return username, nil
}

// Login verifies the credentials and issues a session token. Any failure
// collapses into ErrInvalidCredentials to prevent user enumeration.
func (s *AuthService) Login(username, password string) (string, Token, error) {
	username = auth.SanitizeUsername(username)

	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		return "", "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", "", errors.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(username)
	if err != nil {
		return "", "", errors.ErrTokenGeneration
	}
	return username, Token(token), nil
}

func (s *AuthService) Exists(username string) bool {
	return s.userRepository.Exists(username)
}

// IdentityFromToken resolves a bearer token back to its username.
func (s *AuthService) IdentityFromToken(token string) (string, error) {
	username, err := s.issuer.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUnauthorized, err)
	}
	return username, nil
}
