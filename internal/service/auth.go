package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/ld-shop/internal/domain/models"
	security "github.com/linemk/ld-shop/internal/jwt-new"
	"github.com/linemk/ld-shop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes - bcrypt не принимает пароли длиннее 72 байт
const MaxPasswordBytes = 72

// hashPassword хэширует пароль; слишком длинный пароль - ошибка валидации, а не сбой сервиса
func hashPassword(password string) ([]byte, error) {
	if len(password) > MaxPasswordBytes {
		return nil, fmt.Errorf("password longer than %d bytes: %w", MaxPasswordBytes, ErrValidation)
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %w", err, ErrValidation)
	}
	return passHash, err
}

type AuthService struct {
	log         *slog.Logger
	userRepo    storage.UserStorage
	tokenSecret string
	tokenTTL    time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:         log,
		userRepo:    userRepo,
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*models.Identity, error)
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	IssueToken(ctx context.Context, username, password string) (string, error)
}

// Login проверяет имя и пароль. Неизвестное имя и неверный пароль дают одну и ту же ошибку.
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	user, err := a.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("unknown username")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	identity := user.Identity()
	logger.Info("user logged in", slog.Int64("userID", user.ID), slog.String("role", user.Role))
	return &identity, nil
}

// Register хэширует пароль и создает пользователя с ролью user
func (a *AuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	const op = "service.AuthService.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	passHash, err := hashPassword(password)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			logger.Warn("password rejected", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Username: username,
		PassHash: passHash,
		Email:    email,
		Role:     models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			logger.Warn("username already taken")
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateUsername)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// IssueToken - вход для API-клиентов, вместо сессии возвращается JWT.
func (a *AuthService) IssueToken(ctx context.Context, username, password string) (string, error) {
	const op = "service.AuthService.IssueToken"

	identity, err := a.Login(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := security.NewToken(*identity, a.tokenSecret, a.tokenTTL)
	if err != nil {
		a.log.Error("failed to generate token", slog.String("op", op), slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}
	return token, nil
}

// EnsureAdmin создает администратора при первом запуске, существующего не трогает
func (a *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	const op = "service.AuthService.EnsureAdmin"
	logger := a.log.With(slog.String("op", op), slog.String("username", username))

	_, err := a.userRepo.GetUserByUsername(ctx, username)
	if err == nil {
		logger.Debug("admin already exists")
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("%s: failed to get user: %w", op, err)
	}
	if password == "" {
		return fmt.Errorf("%s: initial admin password is empty: %w", op, ErrValidation)
	}

	passHash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("%s: failed to hash password: %w", op, err)
	}
	_, err = a.userRepo.CreateUser(ctx, &models.User{
		Username: username,
		PassHash: passHash,
		Role:     models.RoleAdmin,
	})
	if err != nil && !errors.Is(err, storage.ErrUsernameTaken) {
		return fmt.Errorf("%s: failed to create admin: %w", op, err)
	}

	logger.Info("admin user seeded")
	return nil
}
