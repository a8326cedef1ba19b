package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/domain"
	"github.com/Jorge-Marco5/go-api-template/internal/repository"
	"github.com/Jorge-Marco5/go-api-template/internal/telemetry"
)

const (
	// DefaultPage is used when the page query param is absent.
	DefaultPage = 1
	// DefaultLimit is used when the limit query param is absent.
	DefaultLimit = 10
)

// UserPage is one page of the user listing.
type UserPage struct {
	Users      []*domain.User `json:"users"`
	Count      int            `json:"count"`
	TotalPages int            `json:"totalPages"`
}

// CreateUserInput holds fields for administrative user creation.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
	IsActive *bool
}

// UpdateUserInput holds fields for a full or partial update. Nil
// pointers are left untouched on partial updates.
type UpdateUserInput struct {
	Email    *string
	Password *string
	Name     *string
	Role     *domain.Role
	IsActive *bool
}

// UserService provides CRUD on the User resource.
type UserService interface {
	List(ctx context.Context, page, limit int) (*UserPage, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, bcryptCost int) UserService {
	if bcryptCost < 10 {
		bcryptCost = 10
	}
	return &userService{userRepo: userRepo, bcryptCost: bcryptCost}
}

// List returns one page of users. Pages are 1-indexed; out-of-range
// values fall back to the defaults.
func (s *userService) List(ctx context.Context, page, limit int) (*UserPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.list")
	defer span.End()

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	span.SetAttributes(attribute.Int("page", page), attribute.Int("limit", limit))

	users, count, err := s.userRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}

	return &UserPage{
		Users:      users,
		Count:      count,
		TotalPages: int(math.Ceil(float64(count) / float64(limit))),
	}, nil
}

// GetByID returns a user or NotFound.
func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.get_by_id")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// Create creates a user administratively. Unlike Register the caller
// may pick role and activity.
func (s *userService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.create")
	defer span.End()
	span.SetAttributes(attribute.String("email", in.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict("email already registered")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role")
	}
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         role,
		IsActive:     isActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// Update applies the given fields to an existing user. It serves both
// PUT (handler validates required fields) and PATCH (any subset).
func (s *userService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperr.Validation("invalid role")
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			span.RecordError(err)
			return nil, apperr.Internal(err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		span.RecordError(err)
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// Delete removes a user or fails with NotFound.
func (s *userService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.delete")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", id))

	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("user not found")
	}
	return nil
}
