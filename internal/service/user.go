package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"blogapi/internal/logging"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// normalizeRegistration trims input, lowercases username and email, and
// title-cases names.
func normalizeRegistration(req model.RegisterRequest) model.RegisterRequest {
	title := cases.Title(language.Und)
	return model.RegisterRequest{
		Username:  strings.ToLower(strings.TrimSpace(req.Username)),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  req.Password,
		FirstName: title.String(strings.TrimSpace(req.FirstName)),
		LastName:  title.String(strings.TrimSpace(req.LastName)),
	}
}

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req = normalizeRegistration(req)
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logging.Component("user_service").WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Don't reveal whether the email exists
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID returns the full profile, used for the current user.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetPublicProfile(ctx context.Context, id int64) (*model.PublicProfile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	return &profile, nil
}
