package service

import (
	"context"
	"log"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type AuditEntryResponse struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLog(ctx context.Context, accountID uuid.UUID, page, limit int) ([]AuditEntryResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) GetAuditLog(ctx context.Context, accountID uuid.UUID, page, limit int) ([]AuditEntryResponse, int64, error) {
	entries, total, err := s.repo.List(ctx, accountID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, AuditEntryResponse{
			ID:         e.ID.String(),
			Action:     e.Action,
			EntityKind: e.EntityKind,
			EntityID:   e.EntityID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}

	return res, total, nil
}

// recordAudit writes a trail entry best-effort; a failed write never fails
// the operation that triggered it.
func recordAudit(ctx context.Context, repo repository.AuditRepository, accountID uuid.UUID, action, entityKind, entityID, details string) {
	if repo == nil {
		return
	}
	entry := &model.AuditEntry{
		AccountID:  accountID,
		Action:     action,
		EntityKind: entityKind,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now(),
	}
	if err := repo.Create(ctx, entry); err != nil {
		log.Println("audit: failed to record entry:", err)
	}
}
