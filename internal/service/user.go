package service

import (
	"context"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// UserRepositoryInterface defines the repository interface for user persistence
type UserRepositoryInterface interface {
	GetBySubject(ctx context.Context, subject string) (*domain.User, error)
	Upsert(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateRole(ctx context.Context, subject string, role domain.UserRole) error
}

// UserService handles user provisioning and role management
type UserService struct {
	userRepo UserRepositoryInterface
	uuidGen  UUIDGenerator
}

// NewUserService creates a new UserService instance
func NewUserService(userRepo UserRepositoryInterface) *UserService {
	return &UserService{
		userRepo: userRepo,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// Provision returns the account for a token subject, creating a student
// record on first sight. The upsert keys on the subject, so concurrent first
// requests converge on a single row.
func (s *UserService) Provision(ctx context.Context, subject, email string) (*domain.User, error) {
	user := domain.NewUser(s.uuidGen.NewString(), subject, email, domain.UserRoleStudent, time.Now().UTC())
	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}
	return s.userRepo.Upsert(ctx, user)
}

// GetBySubject retrieves a user by token subject
func (s *UserService) GetBySubject(ctx context.Context, subject string) (*domain.User, error) {
	return s.userRepo.GetBySubject(ctx, subject)
}

// UpdateRole changes a user's role, identified by token subject
func (s *UserService) UpdateRole(ctx context.Context, subject string, role domain.UserRole) error {
	if _, err := domain.ParseUserRole(string(role)); err != nil {
		return domain.NewDomainError(domain.ErrCodeValidation, err.Error())
	}
	return s.userRepo.UpdateRole(ctx, subject, role)
}
