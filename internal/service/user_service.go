package service

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/ifrs17-reporting/internal/auth"
	apperrors "github.com/ifrs17-reporting/internal/errors"
	"github.com/ifrs17-reporting/internal/logging"
	"github.com/ifrs17-reporting/internal/models"
	"github.com/ifrs17-reporting/internal/storage"
)

// UserRepository interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// TokenDenylist interface for revoked token bookkeeping
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Session is an authenticated request's identity
type Session struct {
	UserID int64
	Claims *auth.Claims
}

const defaultAdminName = "Default Admin"

// UserService handles accounts and authentication
type UserService struct {
	repo     UserRepository
	denylist TokenDenylist
	tokens   *auth.TokenManager
	logger   *logging.Logger
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository, denylist TokenDenylist, tokens *auth.TokenManager, logger *logging.Logger) *UserService {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &UserService{
		repo:     repo,
		denylist: denylist,
		tokens:   tokens,
		logger:   logger.WithField("component", "user_service"),
	}
}

// EnsureDefaultAdmin creates the bootstrap admin account if it is missing
func (s *UserService) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return apperrors.NewDatabaseError("get_user_by_email", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.NewInternalError("Failed to hash password", err)
	}

	admin := &models.User{
		Email:        email,
		Name:         defaultAdminName,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil
		}
		return apperrors.NewDatabaseError("create_user", err)
	}

	s.logger.WithField("email", admin.Email).Info("Default admin account created")
	return nil
}

// Create registers a new account with the USER role
func (s *UserService) Create(ctx context.Context, input *models.NewUser) (*models.User, error) {
	if err := validateNewUser(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflictError("Email already registered")
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, apperrors.NewDatabaseError("get_user_by_email", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to hash password", err)
	}

	user := &models.User{
		Email:        models.NormalizeEmail(input.Email),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, apperrors.NewConflictError("Email already registered")
		}
		return nil, apperrors.NewDatabaseError("create_user", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User created")

	return user, nil
}

func validateNewUser(input *models.NewUser) error {
	if input == nil {
		return apperrors.NewInvalidParameterError("body", "request body is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return apperrors.NewInvalidParameterError("email", "email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return apperrors.NewInvalidParameterError("email", "email is not a valid address")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewInvalidParameterError("name", "name is required")
	}
	if input.Password == "" {
		return apperrors.NewInvalidParameterError("password", "password is required")
	}
	return nil
}

// Authenticate returns the user matching the credentials, or nil when the
// email is unknown or the password does not match.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("get_user_by_email", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return user, nil
}

// Login authenticates the credentials and issues an access token
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.WithField("email", models.NormalizeEmail(email)).Warn("Failed login attempt")
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to issue token", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// VerifyToken validates an access token and rejects revoked ones
func (s *UserService) VerifyToken(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid token")
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.NewCacheError("is_token_revoked", err)
	}
	if revoked {
		return nil, apperrors.NewUnauthorizedError("Token has been revoked")
	}

	return &Session{UserID: userID, Claims: claims}, nil
}

// Logout revokes the session's token for the rest of its lifetime
func (s *UserService) Logout(ctx context.Context, session *Session) error {
	if session == nil || session.Claims == nil {
		return apperrors.NewUnauthorizedError("Not authenticated")
	}

	var expiresAt time.Time
	if session.Claims.ExpiresAt != nil {
		expiresAt = session.Claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, session.Claims.ID, expiresAt); err != nil {
		return apperrors.NewCacheError("revoke_token", err)
	}

	s.logger.WithField("user_id", session.UserID).Info("User logged out")
	return nil
}

// Get returns the user with id
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", strconv.FormatInt(id, 10))
		}
		return nil, apperrors.NewDatabaseError("get_user", err)
	}
	return user, nil
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list_users", err)
	}
	return users, nil
}

// RequireAdmin returns the user when it holds the admin role
func (s *UserService) RequireAdmin(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return nil, apperrors.NewDatabaseError("get_user", err)
	}
	if !user.IsAdmin() {
		return nil, apperrors.NewForbiddenError("Admin access required")
	}
	return user, nil
}
