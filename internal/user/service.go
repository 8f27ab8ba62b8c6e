package user

import (
	"context"
	"fmt"

	"prizedraw/internal/api"
	"prizedraw/internal/auth"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, error)
	GetByID(ctx context.Context, userID int) (*User, error)
}

type service struct {
	repo      Repo
	jwtSecret string
}

func NewService(repo Repo, jwtSecret string) Service {
	return &service{repo: repo, jwtSecret: jwtSecret}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", fmt.Errorf("%w: email already registered", api.ErrValidation)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, "user")
	if err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", api.ErrUnauthorized)
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", api.ErrUnauthorized)
	}

	token, err := auth.GenerateToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}
