package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/projectshelf/pkg/errors"
)

const minPasswordLen = 8

// Service exposes account workflows.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (View, error)
	Get(ctx context.Context, actor Actor, id string) (View, error)
	List(ctx context.Context, actor Actor) ([]View, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateRequest) (View, error)
	Delete(ctx context.Context, actor Actor, id string) (View, error)
}

type service struct {
	repo       Repository
	portfolios PortfolioLifecycle
	logger     *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, portfolios PortfolioLifecycle, logger *slog.Logger) Service {
	return &service{
		repo:       repo,
		portfolios: portfolios,
		logger:     logger.With("component", "user.service"),
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (View, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return View{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}
	if err := validatePassword(req.Password); err != nil {
		return View{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	_, exists, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to check user", err)
	}
	if exists {
		return View{}, apperrors.Wrap(apperrors.CodeEmailExists, fmt.Sprintf("user with email %s already exists", email), nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to hash password", err)
	}
	created, err := s.repo.Create(ctx, NewUser{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         RoleUser,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return View{}, apperrors.Wrap(apperrors.CodeEmailExists, fmt.Sprintf("user with email %s already exists", email), err)
		}
		return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to create user", err)
	}

	if err := s.portfolios.CreateDefault(ctx, created); err != nil {
		s.logger.Error("default portfolio creation failed, removing user", "user_id", created.ID, "error", err)
		if _, delErr := s.repo.Delete(ctx, created.ID); delErr != nil {
			s.logger.Error("failed to remove user after portfolio failure", "user_id", created.ID, "error", delErr)
		}
		return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to create user", err)
	}

	s.logger.Info("user created", "user_id", created.ID)
	return ToView(created), nil
}

func (s *service) Get(ctx context.Context, actor Actor, id string) (View, error) {
	if err := authorizeSelf(actor, id); err != nil {
		return View{}, err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return ToView(u), nil
}

func (s *service) List(ctx context.Context, actor Actor) ([]View, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Wrap(apperrors.CodeForbidden, "admin role required", nil)
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list users", err)
	}
	views := make([]View, 0, len(users))
	for _, u := range users {
		views = append(views, ToView(u))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateRequest) (View, error) {
	if err := authorizeSelf(actor, id); err != nil {
		return View{}, err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return View{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to hash password", err)
		}
		u.PasswordHash = string(hashed)
	}
	updated, found, err := s.repo.Update(ctx, u)
	if err != nil {
		return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to update user", err)
	}
	if !found {
		return View{}, notFound(id)
	}
	return ToView(updated), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id string) (View, error) {
	if err := authorizeSelf(actor, id); err != nil {
		return View{}, err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.portfolios.DeleteAllForOwner(ctx, u.ID); err != nil {
		return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to delete user portfolios", err)
	}
	deleted, err := s.repo.Delete(ctx, u.ID)
	if err != nil {
		return View{}, apperrors.Wrap(apperrors.CodeInternal, "failed to delete user", err)
	}
	if !deleted {
		return View{}, notFound(id)
	}
	s.logger.Info("user deleted", "user_id", u.ID, "actor_id", actor.ID)
	return ToView(u), nil
}

func (s *service) load(ctx context.Context, id string) (User, error) {
	u, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, apperrors.Wrap(apperrors.CodeInternal, "failed to load user", err)
	}
	if !found {
		return User{}, notFound(id)
	}
	return u, nil
}

func authorizeSelf(actor Actor, id string) error {
	if actor.IsAdmin() || (actor.ID != "" && actor.ID == id) {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeForbidden, "not allowed to access this user", nil)
}

func notFound(id string) error {
	return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("user with ID %s not found", id), nil)
}

// NormalizeEmail trims the address and checks it is a bare address.
// Case is preserved: emails are unique exactly as stored.
func NormalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	if addr.Address != email {
		return "", errors.New("email must be a bare address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
