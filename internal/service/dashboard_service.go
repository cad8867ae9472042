package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// DashboardResponse is the summary an account sees on its home screen.
type DashboardResponse struct {
	VisitsToday   int64  `json:"visits_today"`
	PendingVisits int64  `json:"pending_visits"`
	TotalClients  int64  `json:"total_clients"`
	PendingQuotes int64  `json:"pending_quotes"`
	MonthRevenue  string `json:"month_revenue"` // accepted quotes issued this month
}

type DashboardService interface {
	GetDashboard(ctx context.Context, accountID uuid.UUID) (*DashboardResponse, error)
}

type dashboardService struct {
	visits  repository.VisitRepository
	clients repository.ClientRepository
	quotes  repository.QuoteRepository
}

func NewDashboardService(visits repository.VisitRepository, clients repository.ClientRepository, quotes repository.QuoteRepository) DashboardService {
	return &dashboardService{visits: visits, clients: clients, quotes: quotes}
}

func (s *dashboardService) GetDashboard(ctx context.Context, accountID uuid.UUID) (*DashboardResponse, error) {
	now := time.Now()
	today := now.Format("2006-01-02")
	month := now.Format("2006-01")

	visitsToday, err := s.visits.CountOnDate(ctx, accountID, today)
	if err != nil {
		return nil, err
	}
	pendingVisits, err := s.visits.CountByStatus(ctx, accountID, model.VisitStatusPending, model.VisitStatusConfirmed)
	if err != nil {
		return nil, err
	}
	totalClients, err := s.clients.Count(ctx, accountID)
	if err != nil {
		return nil, err
	}
	pendingQuotes, err := s.quotes.CountByStatus(ctx, accountID, model.QuoteStatusDraft, model.QuoteStatusSent)
	if err != nil {
		return nil, err
	}
	monthRevenue, err := s.quotes.SumAcceptedByIssueMonth(ctx, accountID, month)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		VisitsToday:   visitsToday,
		PendingVisits: pendingVisits,
		TotalClients:  totalClients,
		PendingQuotes: pendingQuotes,
		MonthRevenue:  monthRevenue.String(),
	}, nil
}
