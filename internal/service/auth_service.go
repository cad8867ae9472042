package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	CreatedAt string `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	Account     AccountResponse `json:"account"`
}

// --- Interface ---

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Profile(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error)
}

type authService struct {
	accounts repository.AccountRepository
	tokens   *auth.Manager
}

func NewAuthService(accounts repository.AccountRepository, tokens *auth.Manager) AuthService {
	return &authService{accounts: accounts, tokens: tokens}
}

// --- Implementation ---

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if _, err := s.accounts.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.ErrDuplicateAccount
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Password: hashed,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return s.issueToken(account)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		// Unknown email and wrong password must be indistinguishable.
		return nil, apperror.ErrInvalidCredentials
	}

	if !auth.CheckPassword(req.Password, account.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueToken(account)
}

func (s *authService) Profile(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := toAccountResponse(account)
	return &resp, nil
}

func (s *authService) issueToken(account *model.Account) (*TokenResponse, error) {
	token, err := s.tokens.Sign(account.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Account:     toAccountResponse(account),
	}, nil
}

func toAccountResponse(account *model.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID.String(),
		Name:      account.Name,
		Surname:   account.Surname,
		Email:     account.Email,
		Phone:     account.Phone,
		Company:   account.Company,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}
}
