package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/devcamper/internal/auth"
	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/repository"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/validator"
)

const invalidCredentials = "invalid credentials"

// UserService implements account, authentication and user administration.
type UserService struct {
	users      repository.UserRepository
	courses    repository.CourseRepository
	reviews    repository.ReviewRepository
	aggregates AggregateMaintainer
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	courses repository.CourseRepository,
	reviews repository.ReviewRepository,
	aggregates AggregateMaintainer,
	jwtManager *auth.JWTManager,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:      users,
		courses:    courses,
		reviews:    reviews,
		aggregates: aggregates,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// --- Auth Input/Output types ---

// RegisterInput holds the fields of a self-service sign-up. Admin cannot be
// chosen here.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,signup_role"`
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateDetailsInput changes the caller's own name or email.
type UpdateDetailsInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordInput changes the caller's password.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// CreateUserInput is an admin-created account; any role may be assigned.
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

// UpdateUserInput is an admin update of any account.
type UpdateUserInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,role"`
}

// AuthResult is a signed-in user and their access token.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *domain.User `json:"user"`
}

// --- Auth Operations ---

// Register creates an account with role user (or publisher when asked) and
// signs it in.
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if input.Role != "" {
		role = domain.Role(input.Role)
	}

	u, err := s.create(ctx, input.Name, input.Email, input.Password, role)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", u.ID),
		slog.String("role", string(u.Role)),
	)
	return s.issue(u)
}

// Login checks credentials and returns a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, input.Password); err != nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))
	return s.issue(u)
}

// Me returns the account of the authenticated caller.
func (s *UserService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateDetails changes the caller's name or email.
func (s *UserService) UpdateDetails(ctx context.Context, actor domain.Actor, input *UpdateDetailsInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	u, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Email != nil {
		u.Email = normalizeEmail(*input.Email)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces the caller's password after checking the current
// one, and returns a fresh token.
func (s *UserService) UpdatePassword(ctx context.Context, actor domain.Actor, input *UpdatePasswordInput) (*AuthResult, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	u, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(u.PasswordHash, input.CurrentPassword); err != nil {
		return nil, apperrors.Unauthorized("password is incorrect")
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	u.PasswordHash = hash

	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", u.ID))
	return s.issue(u)
}

// --- User administration ---

// List returns one page of users.
func (s *UserService) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Create adds an account with any role.
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}
	role := domain.RoleUser
	if input.Role != "" {
		role = domain.Role(input.Role)
	}
	return s.create(ctx, input.Name, input.Email, input.Password, role)
}

// Update changes any account's name, email or role.
func (s *UserService) Update(ctx context.Context, id string, input *UpdateUserInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Email != nil {
		u.Email = normalizeEmail(*input.Email)
	}
	if input.Role != nil {
		u.Role = domain.Role(*input.Role)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes an account. The database removes the user's bootcamps,
// courses and reviews along with it; bootcamps of other owners that held the
// user's courses or reviews get their averages recomputed once the delete
// has committed.
func (s *UserService) Delete(ctx context.Context, id string) error {
	costs, err := s.courses.BootcampIDsByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("find bootcamps with user courses: %w", err)
	}
	ratings, err := s.reviews.BootcampIDsByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("find bootcamps with user reviews: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	for _, bootcampID := range costs {
		s.aggregates.RecomputeAverageCost(ctx, bootcampID)
	}
	for _, bootcampID := range ratings {
		s.aggregates.RecomputeAverageRating(ctx, bootcampID)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
		slog.Int("recomputed_bootcamps", len(costs)+len(ratings)),
	)
	return nil
}

func (s *UserService) create(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        normalizeEmail(email),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *UserService) issue(u *domain.User) (*AuthResult, error) {
	token, err := s.jwtManager.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("generate token: %w", err))
	}
	return &AuthResult{
		Token:     token,
		ExpiresIn: int64(s.jwtManager.Expiry().Seconds()),
		User:      u,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
