package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/amaamoun99/recepito/internal/apperrors"
	"github.com/amaamoun99/recepito/internal/mail"
	"github.com/amaamoun99/recepito/internal/metrics"
	"github.com/amaamoun99/recepito/internal/models"
	"github.com/amaamoun99/recepito/internal/repository"
	"github.com/amaamoun99/recepito/internal/utils"
)

// A single undifferentiated message for both unknown email and wrong password
// keeps login failures from confirming whether an account exists.
const loginFailedMessage = "incorrect email or password"

// AuthResult is returned by every operation that mints a credential token.
type AuthResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// SessionService implements signup, login, identity lookup and the password
// change/reset flows.
type SessionService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.PublicUser, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) (*AuthResult, error)
	// ForgotPassword returns the plaintext ticket only when the service is
	// configured with the development shortcut; otherwise it returns "".
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, ticket, newPassword string) (*AuthResult, error)
}

type sessionService struct {
	users             repository.UserRepository
	tokens            *utils.TokenManager
	mailer            mail.Channel
	log               *zap.SugaredLogger
	bcryptCost        int
	resetTTL          time.Duration
	allowAdminSignup  bool
	exposeResetTicket bool
}

func NewSessionService(
	users repository.UserRepository,
	tokens *utils.TokenManager,
	mailer mail.Channel,
	log *zap.SugaredLogger,
	bcryptCost int,
	resetTTL time.Duration,
	allowAdminSignup bool,
	exposeResetTicket bool,
) SessionService {
	return &sessionService{
		users:             users,
		tokens:            tokens,
		mailer:            mailer,
		log:               log,
		bcryptCost:        bcryptCost,
		resetTTL:          resetTTL,
		allowAdminSignup:  allowAdminSignup,
		exposeResetTicket: exposeResetTicket,
	}
}

func (s *sessionService) mintToken(user *models.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user.PublicView()}, nil
}

func (s *sessionService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation("username, email and password are required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters long")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.Validation("role is not allowed")
	}
	if role != models.RoleUser && !s.allowAdminSignup {
		return nil, apperrors.Validation("role is not allowed")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Validation("email is already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, apperrors.Validation("username is already taken")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		// The unique index closes the race between the pre-checks and the
		// insert; losing that race is a conflict, not a validation failure.
		if repository.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("email or username is already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	return s.mintToken(user)
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.Validation("please provide email and password")
	}
	user, err := s.users.FindByEmailWithPassword(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
			return nil, apperrors.Authentication(loginFailedMessage)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.Active || !utils.CheckPassword(user.PasswordHash, password) {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, apperrors.Authentication(loginFailedMessage)
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return s.mintToken(user)
}

func (s *sessionService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.Authentication("user no longer exists")
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	view := user.PublicView()
	return &view, nil
}

func (s *sessionService) ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) (*AuthResult, error) {
	if len(newPassword) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters long")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.Authentication("user no longer exists")
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	// The default projection hides the hash; re-fetch it for verification.
	withHash, err := s.users.FindByEmailWithPassword(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if !utils.CheckPassword(withHash.PasswordHash, currentPassword) {
		metrics.AuthAttempts.WithLabelValues("change_password", "failure").Inc()
		return nil, apperrors.Authentication("current password is incorrect")
	}

	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("change_password", "success").Inc()
	return s.mintToken(user)
}

// setPassword stores a new hash and advances the password_changed_at
// watermark. The watermark is truncated to whole seconds so a token minted
// immediately afterwards (whose iat has second precision) is not judged stale.
func (s *sessionService) setPassword(ctx context.Context, user *models.User, newPassword string) error {
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	changedAt := time.Now().UTC().Truncate(time.Second)
	if err := s.users.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordChangedAt = changedAt
	return nil
}

func (s *sessionService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperrors.NotFound("there is no user with that email address")
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	plain, hash, err := utils.GenerateResetTicket()
	if err != nil {
		return "", err
	}
	expires := time.Now().UTC().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hash, expires); err != nil {
		return "", fmt.Errorf("failed to store reset ticket: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, plain); err != nil {
		// The stored hash is useless to an attacker; clear it anyway so a
		// failed delivery cannot leave a live ticket nobody received.
		s.clearResetToken(ctx, user.ID)
		return "", fmt.Errorf("failed to deliver reset ticket: %w", err)
	}

	if s.exposeResetTicket {
		return plain, nil
	}
	return "", nil
}

func (s *sessionService) clearResetToken(ctx context.Context, id primitive.ObjectID) {
	if err := s.users.SetResetToken(ctx, id, "", time.Unix(0, 0)); err != nil {
		s.log.Warnw("failed to clear reset ticket", "user", id.Hex(), "error", err)
	}
}

func (s *sessionService) ResetPassword(ctx context.Context, ticket, newPassword string) (*AuthResult, error) {
	if len(newPassword) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters long")
	}
	user, err := s.users.FindByResetToken(ctx, utils.HashResetTicket(ticket), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthAttempts.WithLabelValues("reset_password", "failure").Inc()
			return nil, apperrors.InvalidToken("reset token is invalid or has expired")
		}
		return nil, fmt.Errorf("failed to look up reset ticket: %w", err)
	}

	// UpdatePassword clears the stored ticket hash, making the ticket
	// single-use: a second attempt with the same plaintext finds nothing.
	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("reset_password", "success").Inc()
	return s.mintToken(user)
}
