// Package auth implements registration, login and profile changes on top of
// the repository and the session store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/worker"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWrongPassword is returned when the current password does not match
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrNotLoggedIn is returned by operations that need a session
	ErrNotLoggedIn = errors.New("not logged in")
)

// Users is the slice of the repository the service needs
type Users interface {
	RegisterUser(ctx context.Context, u *models.User) (int64, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	EmailInUse(ctx context.Context, email string, exceptID int64) (bool, error)
	UpdateUser(u models.User) *worker.Future
}

// Session is the slice of the session store the service needs
type Session interface {
	CreateLoginSession(userID int64, email, fullName string) error
	UpdateUserDetails(email, fullName string) error
	Logout() error
	IsLoggedIn() bool
	UserID() int64
}

// RegisterRequest is the registration form
type RegisterRequest struct {
	FullName string `validate:"required" label:"Full name"`
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required,min=6" label:"Password"`
}

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `validate:"required" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// ProfileRequest is the profile edit form
type ProfileRequest struct {
	FullName string `validate:"required" label:"Full name"`
	Email    string `validate:"required,email" label:"Email"`
}

// PasswordRequest is the change password form
type PasswordRequest struct {
	Current string `validate:"required" label:"Current password"`
	New     string `validate:"required,min=6" label:"New password"`
}

// Service applies the account rules
type Service struct {
	users    Users
	session  Session
	validate *validator.Validate
}

// NewService creates the service
func NewService(users Users, session Session) *Service {
	return &Service{
		users:    users,
		session:  session,
		validate: newValidator(),
	}
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if err := check(s.validate, req); err != nil {
		return nil, err
	}

	user := &models.User{Email: req.Email, Password: req.Password, FullName: req.FullName}
	if _, err := s.users.RegisterUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return nil, err
		}
		slog.Error("registration failed", "email", req.Email, "error", err)
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and opens a session
func (s *Service) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if err := check(s.validate, req); err != nil {
		return nil, err
	}

	user, err := s.users.UserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		slog.Error("login lookup failed", "email", req.Email, "error", err)
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if user.Password != req.Password {
		return nil, ErrInvalidCredentials
	}

	if err := s.session.CreateLoginSession(user.ID, user.Email, user.FullName); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// Logout ends the session
func (s *Service) Logout() error {
	return s.session.Logout()
}

// CurrentUser loads the logged-in user
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	if !s.session.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}
	return s.users.UserByID(ctx, s.session.UserID())
}

// UpdateProfile changes the name and email of the logged-in user and then
// the cached session fields. The two writes are not atomic.
func (s *Service) UpdateProfile(ctx context.Context, req ProfileRequest) (*models.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := check(s.validate, req); err != nil {
		return nil, err
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	inUse, err := s.users.EmailInUse(ctx, req.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if inUse {
		return nil, models.ErrEmailTaken
	}

	user.FullName = req.FullName
	user.Email = req.Email
	if err := s.users.UpdateUser(*user).Wait(); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := s.session.UpdateUserDetails(user.Email, user.FullName); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password of the logged-in user
func (s *Service) ChangePassword(ctx context.Context, req PasswordRequest) error {
	req.Current = strings.TrimSpace(req.Current)
	req.New = strings.TrimSpace(req.New)
	if err := check(s.validate, req); err != nil {
		return err
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user.Password != req.Current {
		return ErrWrongPassword
	}

	user.Password = req.New
	if err := s.users.UpdateUser(*user).Wait(); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}
