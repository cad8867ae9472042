package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type VisitRequest struct {
	ClientID      string `json:"client_id" binding:"required"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	ScheduledTime string `json:"scheduled_time"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	InternalNotes string `json:"internal_notes"`
}

// CompleteVisitRequest carries the optional sign-off captured on site.
type CompleteVisitRequest struct {
	Signature     string `json:"signature"`
	SignerName    string `json:"signer_name"`
	InternalNotes string `json:"internal_notes"`
}

type VisitResponse struct {
	ID            string  `json:"id"`
	ClientID      string  `json:"client_id"`
	ClientName    string  `json:"client_name"`
	ClientPhone   string  `json:"client_phone"`
	ClientAddress string  `json:"client_address"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime string  `json:"scheduled_time"`
	Category      string  `json:"category"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	InternalNotes string  `json:"internal_notes"`
	Signature     string  `json:"signature"`
	SignerName    string  `json:"signer_name"`
	CompletedAt   *string `json:"completed_at"`
	CreatedAt     string  `json:"created_at"`
}

// --- Interface ---

type VisitService interface {
	CreateVisit(ctx context.Context, accountID uuid.UUID, req VisitRequest) (*VisitResponse, error)
	GetVisit(ctx context.Context, accountID, id uuid.UUID) (*VisitResponse, error)
	ListVisits(ctx context.Context, accountID uuid.UUID, date, status string) ([]VisitResponse, error)
	ListVisitsToday(ctx context.Context, accountID uuid.UUID) ([]VisitResponse, error)
	UpdateVisit(ctx context.Context, accountID, id uuid.UUID, req VisitRequest) (*VisitResponse, error)
	ChangeVisitStatus(ctx context.Context, accountID, id uuid.UUID, status string) (*VisitResponse, error)
	CompleteVisit(ctx context.Context, accountID, id uuid.UUID, req CompleteVisitRequest) (*VisitResponse, error)
	DeleteVisit(ctx context.Context, accountID, id uuid.UUID) error
}

type visitService struct {
	visits  repository.VisitRepository
	clients repository.ClientRepository
	audit   repository.AuditRepository
	hub     *websocket.Hub
}

func NewVisitService(visits repository.VisitRepository, clients repository.ClientRepository, audit repository.AuditRepository, hub *websocket.Hub) VisitService {
	return &visitService{visits: visits, clients: clients, audit: audit, hub: hub}
}

// --- Implementation ---

func validVisitStatus(status string) bool {
	switch status {
	case model.VisitStatusPending, model.VisitStatusConfirmed, model.VisitStatusCompleted, model.VisitStatusCancelled:
		return true
	}
	return false
}

func validateVisitRequest(req *VisitRequest) error {
	if _, err := time.Parse("2006-01-02", req.ScheduledDate); err != nil {
		return apperror.Validationf("scheduled_date must be YYYY-MM-DD")
	}
	if req.ScheduledTime != "" {
		if _, err := time.Parse("15:04", req.ScheduledTime); err != nil {
			return apperror.Validationf("scheduled_time must be HH:MM")
		}
	}
	if req.Category == "" {
		req.Category = model.VisitCategoryRepair
	}
	if req.Status == "" {
		req.Status = model.VisitStatusPending
	}
	if !validVisitStatus(req.Status) {
		return apperror.Validationf("unknown visit status %q", req.Status)
	}
	if req.Priority == "" {
		req.Priority = model.VisitPriorityNormal
	}
	return nil
}

func (s *visitService) CreateVisit(ctx context.Context, accountID uuid.UUID, req VisitRequest) (*VisitResponse, error) {
	if err := validateVisitRequest(&req); err != nil {
		return nil, err
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperror.Validationf("invalid client_id")
	}
	// Ownership check: a foreign client id must look nonexistent.
	if _, err := s.clients.FindByID(ctx, accountID, clientID); err != nil {
		return nil, err
	}

	visit := &model.Visit{
		AccountID:     accountID,
		ClientID:      clientID,
		Title:         req.Title,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		Category:      req.Category,
		Status:        req.Status,
		Priority:      req.Priority,
		InternalNotes: req.InternalNotes,
	}
	s.applyCompletionRule(visit)

	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, accountID, model.ActionCreateVisit, "visit", visit.ID.String(), visit.Title)
	s.hub.Publish(accountID, websocket.Event{Type: "visit.created", EntityKind: "visit", Payload: visit.ID.String()})
	return s.reload(ctx, accountID, visit.ID)
}

func (s *visitService) GetVisit(ctx context.Context, accountID, id uuid.UUID) (*VisitResponse, error) {
	visit, err := s.visits.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	resp := toVisitResponse(visit)
	return &resp, nil
}

func (s *visitService) ListVisits(ctx context.Context, accountID uuid.UUID, date, status string) ([]VisitResponse, error) {
	if status != "" && !validVisitStatus(status) {
		return nil, apperror.Validationf("unknown visit status %q", status)
	}
	visits, err := s.visits.List(ctx, accountID, repository.VisitFilter{Date: date, Status: status})
	if err != nil {
		return nil, err
	}
	res := make([]VisitResponse, 0, len(visits))
	for i := range visits {
		res = append(res, toVisitResponse(&visits[i]))
	}
	return res, nil
}

func (s *visitService) ListVisitsToday(ctx context.Context, accountID uuid.UUID) ([]VisitResponse, error) {
	return s.ListVisits(ctx, accountID, time.Now().Format("2006-01-02"), "")
}

func (s *visitService) UpdateVisit(ctx context.Context, accountID, id uuid.UUID, req VisitRequest) (*VisitResponse, error) {
	if err := validateVisitRequest(&req); err != nil {
		return nil, err
	}

	visit, err := s.visits.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperror.Validationf("invalid client_id")
	}
	if clientID != visit.ClientID {
		if _, err := s.clients.FindByID(ctx, accountID, clientID); err != nil {
			return nil, err
		}
		visit.ClientID = clientID
	}

	visit.Title = req.Title
	visit.Description = req.Description
	visit.ScheduledDate = req.ScheduledDate
	visit.ScheduledTime = req.ScheduledTime
	visit.Category = req.Category
	visit.Status = req.Status
	visit.Priority = req.Priority
	visit.InternalNotes = req.InternalNotes
	s.applyCompletionRule(visit)

	if err := s.visits.Save(ctx, visit); err != nil {
		return nil, err
	}

	return s.reload(ctx, accountID, visit.ID)
}

func (s *visitService) ChangeVisitStatus(ctx context.Context, accountID, id uuid.UUID, status string) (*VisitResponse, error) {
	if !validVisitStatus(status) {
		return nil, apperror.Validationf("unknown visit status %q", status)
	}

	visit, err := s.visits.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	visit.Status = status
	s.applyCompletionRule(visit)

	if err := s.visits.Save(ctx, visit); err != nil {
		return nil, err
	}

	s.hub.Publish(accountID, websocket.Event{Type: "visit.status_changed", EntityKind: "visit", Payload: visit.ID.String()})
	resp := toVisitResponse(visit)
	return &resp, nil
}

func (s *visitService) CompleteVisit(ctx context.Context, accountID, id uuid.UUID, req CompleteVisitRequest) (*VisitResponse, error) {
	visit, err := s.visits.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	visit.Status = model.VisitStatusCompleted
	visit.CompletedAt = &now
	visit.Signature = req.Signature
	visit.SignerName = req.SignerName
	if req.InternalNotes != "" {
		visit.InternalNotes = req.InternalNotes
	}

	if err := s.visits.Save(ctx, visit); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, accountID, model.ActionCompleteVisit, "visit", visit.ID.String(), visit.Title)
	s.hub.Publish(accountID, websocket.Event{Type: "visit.completed", EntityKind: "visit", Payload: visit.ID.String()})
	resp := toVisitResponse(visit)
	return &resp, nil
}

func (s *visitService) DeleteVisit(ctx context.Context, accountID, id uuid.UUID) error {
	if err := s.visits.Delete(ctx, accountID, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, accountID, model.ActionDeleteVisit, "visit", id.String(), "")
	return nil
}

// applyCompletionRule keeps CompletedAt coupled to the status: set when the
// visit is completed, cleared the moment it is anything else.
func (s *visitService) applyCompletionRule(visit *model.Visit) {
	if visit.Status == model.VisitStatusCompleted {
		if visit.CompletedAt == nil {
			now := time.Now()
			visit.CompletedAt = &now
		}
	} else {
		visit.CompletedAt = nil
	}
}

func (s *visitService) reload(ctx context.Context, accountID, id uuid.UUID) (*VisitResponse, error) {
	visit, err := s.visits.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	resp := toVisitResponse(visit)
	return &resp, nil
}

// --- Mapping ---

func toVisitResponse(visit *model.Visit) VisitResponse {
	resp := VisitResponse{
		ID:            visit.ID.String(),
		ClientID:      visit.ClientID.String(),
		Title:         visit.Title,
		Description:   visit.Description,
		ScheduledDate: visit.ScheduledDate,
		ScheduledTime: visit.ScheduledTime,
		Category:      visit.Category,
		Status:        visit.Status,
		Priority:      visit.Priority,
		InternalNotes: visit.InternalNotes,
		Signature:     visit.Signature,
		SignerName:    visit.SignerName,
		CreatedAt:     visit.CreatedAt.Format(time.RFC3339),
	}
	if visit.Client != nil {
		resp.ClientName = visit.Client.FullName()
		resp.ClientPhone = visit.Client.Phone
		if visit.Client.Address != "" && visit.Client.City != "" {
			resp.ClientAddress = visit.Client.Address + ", " + visit.Client.City
		} else {
			resp.ClientAddress = visit.Client.Address + visit.Client.City
		}
	}
	if visit.CompletedAt != nil {
		ts := visit.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &ts
	}
	return resp
}
