package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type QuoteLineInput struct {
	Concept     string  `json:"concept" binding:"required"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateQuoteRequest struct {
	ClientID      string           `json:"client_id" binding:"required"`
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description"`
	TaxApplicable *bool            `json:"tax_applicable"` // defaults to true
	TaxRate       *float64         `json:"tax_rate"`       // percentage, defaults to 21
	ValidUntil    string           `json:"valid_until"`
	Notes         string           `json:"notes"`
	Lines         []QuoteLineInput `json:"lines"`
}

// UpdateQuoteRequest replaces the quote's editable fields and its full line
// set; totals are recomputed from the new lines.
type UpdateQuoteRequest struct {
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description"`
	TaxApplicable *bool            `json:"tax_applicable"`
	TaxRate       *float64         `json:"tax_rate"`
	ValidUntil    string           `json:"valid_until"`
	Notes         string           `json:"notes"`
	Lines         []QuoteLineInput `json:"lines"`
}

type QuoteLineResponse struct {
	ID          string `json:"id"`
	Concept     string `json:"concept"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
	Position    int    `json:"position"`
}

type QuoteResponse struct {
	ID             string              `json:"id"`
	ClientID       string              `json:"client_id"`
	ClientName     string              `json:"client_name"`
	Number         string              `json:"number"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Subtotal       string              `json:"subtotal"`
	TaxRate        string              `json:"tax_rate"`
	TaxApplicable  bool                `json:"tax_applicable"`
	TaxAmount      string              `json:"tax_amount"`
	Total          string              `json:"total"`
	Status         string              `json:"status"`
	IssueDate      string              `json:"issue_date"`
	ValidUntil     string              `json:"valid_until"`
	RejectedAt     *string             `json:"rejected_at"`
	DaysUntilPurge *int                `json:"days_until_purge"`
	Notes          string              `json:"notes"`
	Lines          []QuoteLineResponse `json:"lines"`
	CreatedAt      string              `json:"created_at"`
}

// QuoteStatistics aggregates an account's quotes by outcome.
type QuoteStatistics struct {
	Total          int64   `json:"total"`
	Accepted       int64   `json:"accepted"`
	Pending        int64   `json:"pending"` // draft + sent
	Rejected       int64   `json:"rejected"`
	ConversionRate float64 `json:"conversion_rate"` // accepted/total×100, one decimal
}

// --- Interface ---

type QuoteService interface {
	CreateQuote(ctx context.Context, accountID uuid.UUID, req CreateQuoteRequest) (*QuoteResponse, error)
	GetQuote(ctx context.Context, accountID, id uuid.UUID) (*QuoteResponse, error)
	ListQuotes(ctx context.Context, accountID uuid.UUID, status string) ([]QuoteResponse, error)
	ListQuotesByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]QuoteResponse, error)
	UpdateQuote(ctx context.Context, accountID, id uuid.UUID, req UpdateQuoteRequest) (*QuoteResponse, error)
	ChangeQuoteStatus(ctx context.Context, accountID, id uuid.UUID, status string) (*QuoteResponse, error)
	DeleteQuote(ctx context.Context, accountID, id uuid.UUID) error
	GetStatistics(ctx context.Context, accountID uuid.UUID) (*QuoteStatistics, error)
}

type quoteService struct {
	quotes    repository.QuoteRepository
	clients   repository.ClientRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
	hub       *websocket.Hub
	numbering accountLocks
}

func NewQuoteService(
	quotes repository.QuoteRepository,
	clients repository.ClientRepository,
	audit repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) QuoteService {
	return &quoteService{
		quotes:    quotes,
		clients:   clients,
		audit:     audit,
		txManager: txManager,
		hub:       hub,
	}
}

// accountLocks serializes quote numbering per account. Count-then-insert is
// not atomic on its own; holding the account's lock across the transaction
// keeps concurrent creations for one account from observing the same count,
// while different accounts proceed in parallel. The map keeps one mutex per
// account seen since startup and never evicts; memory grows with the number
// of accounts that created quotes in this process, not with quote volume.
type accountLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (a *accountLocks) get(id uuid.UUID) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.locks == nil {
		a.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	if _, ok := a.locks[id]; !ok {
		a.locks[id] = &sync.Mutex{}
	}
	return a.locks[id]
}

// --- Totals ---

// ComputeTotals derives subtotal, tax amount, and grand total from the line
// set. Pure function: subtotal is the sum of quantity × unit price per line,
// tax applies only when the flag is set, and no intermediate rounding occurs.
func ComputeTotals(lines []model.QuoteLine, taxRate decimal.Decimal, taxApplicable bool) (subtotal, taxAmount, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Quantity.Mul(line.UnitPrice))
	}
	taxAmount = decimal.Zero
	if taxApplicable {
		taxAmount = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100))
	}
	total = subtotal.Add(taxAmount)
	return subtotal, taxAmount, total
}

// DaysUntilPurge returns how many days remain before a rejected quote becomes
// eligible for deletion, zero once the window has passed, and nil for quotes
// that are not rejected. Eligibility is only computed here; deletion stays an
// explicit caller action.
func DaysUntilPurge(quote *model.Quote) *int {
	if quote.RejectedAt == nil {
		return nil
	}
	days := model.RetentionDays - int(time.Since(*quote.RejectedAt).Hours()/24)
	if days < 0 {
		days = 0
	}
	return &days
}

// --- Implementation ---

func buildLines(inputs []QuoteLineInput) ([]model.QuoteLine, error) {
	lines := make([]model.QuoteLine, 0, len(inputs))
	for i, in := range inputs {
		if in.Concept == "" {
			return nil, apperror.Validationf("line %d: concept is required", i+1)
		}
		qty := decimal.NewFromFloat(in.Quantity)
		price := decimal.NewFromFloat(in.UnitPrice)
		lines = append(lines, model.QuoteLine{
			Concept:     in.Concept,
			Description: in.Description,
			Quantity:    qty,
			UnitPrice:   price,
			Total:       qty.Mul(price),
			Position:    i,
		})
	}
	return lines, nil
}

func (s *quoteService) CreateQuote(ctx context.Context, accountID uuid.UUID, req CreateQuoteRequest) (*QuoteResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperror.Validationf("invalid client_id")
	}
	if _, err := s.clients.FindByID(ctx, accountID, clientID); err != nil {
		return nil, err
	}

	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	taxApplicable := true
	if req.TaxApplicable != nil {
		taxApplicable = *req.TaxApplicable
	}
	taxRate := decimal.NewFromInt(21)
	if req.TaxRate != nil {
		taxRate = decimal.NewFromFloat(*req.TaxRate)
	}

	subtotal, taxAmount, total := ComputeTotals(lines, taxRate, taxApplicable)

	quote := &model.Quote{
		AccountID:     accountID,
		ClientID:      clientID,
		Title:         req.Title,
		Description:   req.Description,
		Subtotal:      subtotal,
		TaxRate:       taxRate,
		TaxApplicable: taxApplicable,
		TaxAmount:     taxAmount,
		Total:         total,
		Status:        model.QuoteStatusDraft,
		IssueDate:     time.Now().Format("2006-01-02"),
		ValidUntil:    req.ValidUntil,
		Notes:         req.Notes,
		Lines:         lines,
	}

	lock := s.numbering.get(accountID)
	lock.Lock()
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := s.nextNumber(txCtx, accountID)
		if numErr != nil {
			return fmt.Errorf("failed to generate quote number: %w", numErr)
		}
		quote.Number = number
		return s.quotes.Create(txCtx, quote)
	})
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, accountID, model.ActionCreateQuote, "quote", quote.ID.String(), quote.Number)
	s.hub.Publish(accountID, websocket.Event{Type: "quote.created", EntityKind: "quote", Payload: quote.ID.String()})
	return s.reload(ctx, accountID, quote.ID)
}

// nextNumber returns the next sequential document number for the account's
// current calendar year, format PRES-YYYY-NNNN. Purely a function of stored
// state; callers serialize via the account's numbering lock.
func (s *quoteService) nextNumber(ctx context.Context, accountID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", model.QuoteNumberPrefix, time.Now().Year())
	count, err := s.quotes.CountByNumberPrefix(ctx, accountID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func (s *quoteService) GetQuote(ctx context.Context, accountID, id uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quotes.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	resp := toQuoteResponse(quote)
	return &resp, nil
}

func (s *quoteService) ListQuotes(ctx context.Context, accountID uuid.UUID, status string) ([]QuoteResponse, error) {
	if status != "" && !validQuoteStatus(status) {
		return nil, apperror.Validationf("unknown quote status %q", status)
	}
	quotes, err := s.quotes.List(ctx, accountID, status)
	if err != nil {
		return nil, err
	}
	return toQuoteResponses(quotes), nil
}

func (s *quoteService) ListQuotesByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]QuoteResponse, error) {
	quotes, err := s.quotes.ListByClient(ctx, accountID, clientID)
	if err != nil {
		return nil, err
	}
	return toQuoteResponses(quotes), nil
}

func (s *quoteService) UpdateQuote(ctx context.Context, accountID, id uuid.UUID, req UpdateQuoteRequest) (*QuoteResponse, error) {
	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, findErr := s.quotes.FindByID(txCtx, accountID, id)
		if findErr != nil {
			return findErr
		}

		quote.Title = req.Title
		quote.Description = req.Description
		if req.TaxApplicable != nil {
			quote.TaxApplicable = *req.TaxApplicable
		}
		if req.TaxRate != nil {
			quote.TaxRate = decimal.NewFromFloat(*req.TaxRate)
		}
		quote.ValidUntil = req.ValidUntil
		quote.Notes = req.Notes

		// Stored totals must never diverge from stored lines: replace the
		// line set and persist recomputed totals in the same transaction.
		quote.Subtotal, quote.TaxAmount, quote.Total = ComputeTotals(lines, quote.TaxRate, quote.TaxApplicable)

		if replaceErr := s.quotes.ReplaceLines(txCtx, quote.ID, lines); replaceErr != nil {
			return replaceErr
		}
		return s.quotes.Save(txCtx, quote)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, accountID, model.ActionUpdateQuote, "quote", id.String(), "")
	s.hub.Publish(accountID, websocket.Event{Type: "quote.updated", EntityKind: "quote", Payload: id.String()})
	return s.reload(ctx, accountID, id)
}

func validQuoteStatus(status string) bool {
	switch status {
	case model.QuoteStatusDraft, model.QuoteStatusSent, model.QuoteStatusAccepted, model.QuoteStatusRejected:
		return true
	}
	return false
}

func (s *quoteService) ChangeQuoteStatus(ctx context.Context, accountID, id uuid.UUID, status string) (*QuoteResponse, error) {
	if !validQuoteStatus(status) {
		return nil, apperror.Validationf("unknown quote status %q", status)
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, findErr := s.quotes.FindByID(txCtx, accountID, id)
		if findErr != nil {
			return findErr
		}

		// Every transition into rejected stamps the rejection time, including
		// rejected-to-rejected, so the retention window restarts; leaving
		// rejected clears the stamp.
		if status == model.QuoteStatusRejected {
			now := time.Now()
			quote.RejectedAt = &now
		} else {
			quote.RejectedAt = nil
		}
		quote.Status = status

		return s.quotes.Save(txCtx, quote)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, accountID, model.ActionChangeQuoteStatus, "quote", id.String(), status)
	s.hub.Publish(accountID, websocket.Event{Type: "quote.status_changed", EntityKind: "quote", Payload: id.String()})
	return s.reload(ctx, accountID, id)
}

func (s *quoteService) DeleteQuote(ctx context.Context, accountID, id uuid.UUID) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.quotes.Delete(txCtx, accountID, id)
	})
	if err != nil {
		return err
	}
	recordAudit(ctx, s.audit, accountID, model.ActionDeleteQuote, "quote", id.String(), "")
	return nil
}

func (s *quoteService) GetStatistics(ctx context.Context, accountID uuid.UUID) (*QuoteStatistics, error) {
	total, err := s.quotes.Count(ctx, accountID)
	if err != nil {
		return nil, err
	}
	accepted, err := s.quotes.CountByStatus(ctx, accountID, model.QuoteStatusAccepted)
	if err != nil {
		return nil, err
	}
	pending, err := s.quotes.CountByStatus(ctx, accountID, model.QuoteStatusDraft, model.QuoteStatusSent)
	if err != nil {
		return nil, err
	}
	rejected, err := s.quotes.CountByStatus(ctx, accountID, model.QuoteStatusRejected)
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if total > 0 {
		rate, _ = decimal.NewFromInt(accepted).
			Div(decimal.NewFromInt(total)).
			Mul(decimal.NewFromInt(100)).
			Round(1).
			Float64()
	}

	return &QuoteStatistics{
		Total:          total,
		Accepted:       accepted,
		Pending:        pending,
		Rejected:       rejected,
		ConversionRate: rate,
	}, nil
}

func (s *quoteService) reload(ctx context.Context, accountID, id uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quotes.FindByID(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	resp := toQuoteResponse(quote)
	return &resp, nil
}

// --- Mapping ---

func toQuoteResponses(quotes []model.Quote) []QuoteResponse {
	res := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		res = append(res, toQuoteResponse(&quotes[i]))
	}
	return res
}

func toQuoteResponse(quote *model.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:             quote.ID.String(),
		ClientID:       quote.ClientID.String(),
		Number:         quote.Number,
		Title:          quote.Title,
		Description:    quote.Description,
		Subtotal:       quote.Subtotal.String(),
		TaxRate:        quote.TaxRate.String(),
		TaxApplicable:  quote.TaxApplicable,
		TaxAmount:      quote.TaxAmount.String(),
		Total:          quote.Total.String(),
		Status:         quote.Status,
		IssueDate:      quote.IssueDate,
		ValidUntil:     quote.ValidUntil,
		DaysUntilPurge: DaysUntilPurge(quote),
		Notes:          quote.Notes,
		CreatedAt:      quote.CreatedAt.Format(time.RFC3339),
	}
	if quote.Client != nil {
		resp.ClientName = quote.Client.FullName()
	}
	if quote.RejectedAt != nil {
		ts := quote.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &ts
	}
	resp.Lines = make([]QuoteLineResponse, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		resp.Lines = append(resp.Lines, QuoteLineResponse{
			ID:          line.ID.String(),
			Concept:     line.Concept,
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   line.UnitPrice.String(),
			Total:       line.Total.String(),
			Position:    line.Position,
		})
	}
	return resp
}
