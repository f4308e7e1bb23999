package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"medscan/internal/auth"
	apperrors "medscan/internal/errors"
	"medscan/internal/model"
	"medscan/internal/repository"
)

const bcryptCost = 10

// BootstrapAccount is the account created when the user table is empty.
type BootstrapAccount struct {
	Username string
	Password string
	Role     string
}

// DefaultBootstrapAccount is the out-of-the-box administrator.
var DefaultBootstrapAccount = BootstrapAccount{Username: "admin", Password: "1234", Role: "Chief MD"}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// AuthService manages staff accounts and sessions.
type AuthService interface {
	Bootstrap(ctx context.Context) (bool, error)
	Register(ctx context.Context, username, password, role string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	audit      AuditService
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	bootstrap  BootstrapAccount
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	audit AuditService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	bootstrap BootstrapAccount,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		audit:      audit,
		jwtService: jwtService,
		tokenStore: tokenStore,
		bootstrap:  bootstrap,
	}
}

// Bootstrap creates the default account when no user exists yet and reports
// whether it did.
func (s *authService) Bootstrap(ctx context.Context) (bool, error) {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, persistenceError("count users", err)
	}
	if n > 0 {
		return false, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(s.bootstrap.Password), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Username:     s.bootstrap.Username,
		PasswordHash: string(hashed),
		Role:         s.bootstrap.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, persistenceError("create bootstrap user", err)
	}
	return true, nil
}

// Register creates a staff account with a bcrypt-hashed password.
// Usernames are unique.
func (s *authService) Register(ctx context.Context, username, password, role string) (*model.User, error) {
	if role == "" {
		role = model.DefaultRole
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistenceError("check user existence", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, persistenceError("create user", err)
	}

	s.audit.Append(ctx, model.AuditActionCreate, fmt.Sprintf("Registered user %s (%s)", username, role))
	return user, nil
}

// Authenticate verifies a password against the stored hash. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, persistenceError("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates, records the login and issues access and refresh tokens.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.audit.Append(ctx, model.AuditActionLogin, fmt.Sprintf("User %s logged in", username))

	accessToken, err := s.jwtService.GenerateAccessToken(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.Username, user.Role, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUsername, storedRole, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if storedUsername != claims.Username || storedRole != claims.Role {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.Username, claims.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}
