package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type ClientRequest struct {
	Name           string `json:"name" binding:"required"`
	Surname        string `json:"surname"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone" binding:"required"`
	SecondaryPhone string `json:"secondary_phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	Province       string `json:"province"`
	Kind           string `json:"kind"`
	TaxID          string `json:"tax_id"`
	Notes          string `json:"notes"`
}

type ClientResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	SecondaryPhone string `json:"secondary_phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	Province       string `json:"province"`
	Kind           string `json:"kind"`
	TaxID          string `json:"tax_id"`
	Notes          string `json:"notes"`
	CreatedAt      string `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, accountID uuid.UUID, req ClientRequest) (*ClientResponse, error)
	GetClient(ctx context.Context, accountID, id uuid.UUID) (*ClientResponse, error)
	ListClients(ctx context.Context, accountID uuid.UUID) ([]ClientResponse, error)
	UpdateClient(ctx context.Context, accountID, id uuid.UUID, req ClientRequest) (*ClientResponse, error)
	DeleteClient(ctx context.Context, accountID, id uuid.UUID) error
}

type clientService struct {
	clients repository.ClientRepository
	audit   repository.AuditRepository
}

func NewClientService(clients repository.ClientRepository, audit repository.AuditRepository) ClientService {
	return &clientService{clients: clients, audit: audit}
}

// --- Implementation ---

func validateClientRequest(req *ClientRequest) error {
	if req.Phone == "" {
		return apperror.Validationf("phone is required")
	}
	if req.Kind == "" {
		req.Kind = model.ClientKindIndividual
	}
	if req.Kind != model.ClientKindIndividual && req.Kind != model.ClientKindBusiness {
		return apperror.Validationf("kind must be %q or %q", model.ClientKindIndividual, model.ClientKindBusiness)
	}
	return nil
}

func (s *clientService) CreateClient(ctx context.Context, accountID uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	if err := validateClientRequest(&req); err != nil {
		return nil, err
	}

	client := &model.Client{
		AccountID:      accountID,
		Name:           req.Name,
		Surname:        req.Surname,
		Email:          req.Email,
		Phone:          req.Phone,
		SecondaryPhone: req.SecondaryPhone,
		Address:        req.Address,
		City:           req.City,
		PostalCode:     req.PostalCode,
		Province:       req.Province,
		Kind:           req.Kind,
		TaxID:          req.TaxID,
		Notes:          req.Notes,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, accountID, model.ActionCreateClient, "client", client.ID.String(), client.FullName())
	resp := toClientResponse(client)
	return &resp, nil
}

func (s *clientService) GetClient(ctx context.Context, accountID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clients.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	resp := toClientResponse(client)
	return &resp, nil
}

func (s *clientService) ListClients(ctx context.Context, accountID uuid.UUID) ([]ClientResponse, error) {
	clients, err := s.clients.List(ctx, accountID)
	if err != nil {
		return nil, err
	}
	res := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		res = append(res, toClientResponse(&clients[i]))
	}
	return res, nil
}

func (s *clientService) UpdateClient(ctx context.Context, accountID, id uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	if err := validateClientRequest(&req); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	client.Name = req.Name
	client.Surname = req.Surname
	client.Email = req.Email
	client.Phone = req.Phone
	client.SecondaryPhone = req.SecondaryPhone
	client.Address = req.Address
	client.City = req.City
	client.PostalCode = req.PostalCode
	client.Province = req.Province
	client.Kind = req.Kind
	client.TaxID = req.TaxID
	client.Notes = req.Notes

	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}

	resp := toClientResponse(client)
	return &resp, nil
}

func (s *clientService) DeleteClient(ctx context.Context, accountID, id uuid.UUID) error {
	if err := s.clients.Delete(ctx, accountID, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, accountID, model.ActionDeleteClient, "client", id.String(), "")
	return nil
}

// --- Mapping ---

func toClientResponse(client *model.Client) ClientResponse {
	return ClientResponse{
		ID:             client.ID.String(),
		Name:           client.Name,
		Surname:        client.Surname,
		Email:          client.Email,
		Phone:          client.Phone,
		SecondaryPhone: client.SecondaryPhone,
		Address:        client.Address,
		City:           client.City,
		PostalCode:     client.PostalCode,
		Province:       client.Province,
		Kind:           client.Kind,
		TaxID:          client.TaxID,
		Notes:          client.Notes,
		CreatedAt:      client.CreatedAt.Format(time.RFC3339),
	}
}
