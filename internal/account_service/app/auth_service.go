package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type AuthConfig struct {
	JWTSecret      string
	JWTExpiryHours int
}

// AuthService issues and validates HS256 access tokens.
type AuthService struct {
	accountRepo domain.AccountRepository
	userRepo    domain.UserRepository
	config      AuthConfig
	logger      *slog.Logger
	now         func() time.Time
}

func NewAuthService(accountRepo domain.AccountRepository, userRepo domain.UserRepository, config AuthConfig, logger *slog.Logger) *AuthService {
	if config.JWTExpiryHours <= 0 {
		config.JWTExpiryHours = 24
	}
	return &AuthService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		config:      config,
		logger:      logger.With("component", "auth_service"),
		now:         time.Now,
	}
}

// Login checks the credentials and returns a signed access token with its expiry.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", time.Time{}, domain.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Error fetching user by email", "error", err)
		return "", time.Time{}, err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "Failed login attempt", "user_id", user.ID)
		return "", time.Time{}, domain.ErrInvalidCredentials
	}

	account, err := s.accountRepo.GetByID(ctx, user.AccountID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("loading account for user %s: %w", user.ID, err)
	}
	if account.Status != domain.AccountStatusActive {
		s.logger.WarnContext(ctx, "Login attempt for suspended account", "account_id", account.ID)
		return "", time.Time{}, domain.ErrInvalidCredentials
	}

	expiresAt := s.now().Add(time.Duration(s.config.JWTExpiryHours) * time.Hour)
	token, err := s.generateAccessToken(user, expiresAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to sign access token", "error", err, "user_id", user.ID)
		return "", time.Time{}, err
	}
	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID, "account_id", user.AccountID)
	return token, expiresAt, nil
}

func (s *AuthService) generateAccessToken(user *domain.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":        user.ID.String(),
		"account_id": user.AccountID.String(),
		"email":      user.Email,
		"role":       string(user.Role),
		"exp":        expiresAt.Unix(),
		"iat":        s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// ValidateToken parses a bearer token and returns the identity it carries.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*domain.AuthenticatedUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		s.logger.DebugContext(ctx, "Token validation failed", "error", err)
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	userID, err := uuidClaim(claims, "sub")
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	accountID, err := uuidClaim(claims, "account_id")
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &domain.AuthenticatedUser{
		UserID:    userID,
		AccountID: accountID,
		Email:     email,
		Role:      domain.Role(role),
	}, nil
}

func uuidClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("claim %q missing", key)
	}
	return uuid.Parse(raw)
}

// CreateAccountWithAdmin bootstraps a tenant together with its first admin login.
func (s *AuthService) CreateAccountWithAdmin(ctx context.Context, accountName, email, password string) (*domain.Account, *domain.User, error) {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, nil, domain.ErrDuplicateEntry
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	account := domain.NewAccount(uuid.New(), accountName)
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("creating account: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		AccountID:    account.ID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("creating admin user: %w", err)
	}
	s.logger.InfoContext(ctx, "Account created", "account_id", account.ID, "user_id", user.ID)
	return account, user, nil
}
