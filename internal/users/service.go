package users

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"schoolportal/internal/apperr"
	"schoolportal/internal/crypto"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrSelfDeletion   = errors.New("cannot delete your own account")
)

// Service owns the user lifecycle driven by admins.
type Service struct {
	repo     *Repository
	validate *validator.Validate
}

func NewService(repo *Repository) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(apperr.JSONTagName)
	return &Service{repo: repo, validate: v}
}

// Add validates nu, hashes the password and stores the user.
func (svc *Service) Add(ctx context.Context, nu NewUser) (User, error) {
	nu.normalize()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, apperr.FromValidator(err)
	}

	hash, err := crypto.HashPassword(nu.Password)
	if err != nil {
		return User{}, errors.Wrap(err, "hash password")
	}
	return svc.repo.Create(ctx, User{
		Email:        nu.Email,
		PasswordHash: hash,
		Role:         Role(nu.Role),
		Fullname:     nu.Fullname,
	})
}

// Delete removes userID on behalf of requesterID. Requesters can never delete themselves.
func (svc *Service) Delete(ctx context.Context, userID, requesterID int64) error {
	if userID == requesterID {
		return ErrSelfDeletion
	}
	return svc.repo.Delete(ctx, userID)
}

// List returns all users.
func (svc *Service) List(ctx context.Context) ([]User, error) {
	return svc.repo.List(ctx)
}

// Students returns the student roster.
func (svc *Service) Students(ctx context.Context) ([]User, error) {
	return svc.repo.ListByRole(ctx, RoleStudent)
}

// Student returns the user with id when it is a student, and a validation error otherwise.
func (svc *Service) Student(ctx context.Context, id int64) (User, error) {
	u, err := svc.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) || (err == nil && !u.IsStudent()) {
		return User{}, apperr.Invalid("student_id", "unknown student")
	}
	return u, err
}

// GetByEmail looks a user up by (normalized) email.
func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// GetByID returns a single user.
func (svc *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetByID(ctx, id)
}

// Count returns how many users exist.
func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.Count(ctx)
}
