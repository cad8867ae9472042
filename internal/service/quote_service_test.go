package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func createQuote(t *testing.T, env *testEnv, accountID, clientID uuid.UUID, lines []QuoteLineInput) *QuoteResponse {
	t.Helper()
	quote, err := env.quotes.CreateQuote(context.Background(), accountID, CreateQuoteRequest{
		ClientID: clientID.String(),
		Title:    "Boiler repair",
		Lines:    lines,
	})
	require.NoError(t, err)
	return quote
}

func TestComputeTotals(t *testing.T) {
	lines := []model.QuoteLine{
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(30)},
	}

	subtotal, taxAmount, total := ComputeTotals(lines, decimal.NewFromInt(21), true)
	assert.True(t, subtotal.Equal(decimal.NewFromInt(130)), "subtotal = %s", subtotal)
	assert.True(t, taxAmount.Equal(decimal.NewFromFloat(27.3)), "tax = %s", taxAmount)
	assert.True(t, total.Equal(decimal.NewFromFloat(157.3)), "total = %s", total)
}

func TestComputeTotalsTaxNotApplicable(t *testing.T) {
	lines := []model.QuoteLine{
		{Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(40)},
	}

	subtotal, taxAmount, total := ComputeTotals(lines, decimal.NewFromInt(21), false)
	assert.True(t, subtotal.Equal(decimal.NewFromInt(120)))
	assert.True(t, taxAmount.IsZero())
	assert.True(t, total.Equal(subtotal))
}

func TestComputeTotalsNoLines(t *testing.T) {
	subtotal, taxAmount, total := ComputeTotals(nil, decimal.NewFromInt(21), true)
	assert.True(t, subtotal.IsZero())
	assert.True(t, taxAmount.IsZero())
	assert.True(t, total.IsZero())
}

func TestCreateQuoteComputesTotalsAndNumber(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
		{Concept: "Labour", Quantity: 2, UnitPrice: 50},
		{Concept: "Parts", Quantity: 1, UnitPrice: 30},
	})

	assert.Equal(t, fmt.Sprintf("PRES-%d-0001", time.Now().Year()), quote.Number)
	assert.Equal(t, "130", quote.Subtotal)
	assert.Equal(t, "27.3", quote.TaxAmount)
	assert.Equal(t, "157.3", quote.Total)
	assert.Equal(t, model.QuoteStatusDraft, quote.Status)
	assert.True(t, quote.TaxApplicable)
	assert.Equal(t, "21", quote.TaxRate)
	assert.Len(t, quote.Lines, 2)
	assert.Equal(t, 0, quote.Lines[0].Position)
	assert.Equal(t, 1, quote.Lines[1].Position)
	assert.Nil(t, quote.RejectedAt)
	assert.Nil(t, quote.DaysUntilPurge)
}

func TestCreateQuoteSequentialNumbering(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
			{Concept: "Labour", Quantity: 1, UnitPrice: 10},
		})
		assert.Equal(t, fmt.Sprintf("PRES-%d-%04d", year, i), quote.Number)
	}
}

func TestCreateQuoteNumberingIsPerAccount(t *testing.T) {
	env := newTestEnv(t)
	accountA := seedAccount(t, env.db, "a@example.com")
	accountB := seedAccount(t, env.db, "b@example.com")
	clientA := seedClient(t, env, accountA.ID)
	clientB := seedClient(t, env, accountB.ID)

	lines := []QuoteLineInput{{Concept: "Labour", Quantity: 1, UnitPrice: 10}}
	first := createQuote(t, env, accountA.ID, clientA, lines)
	second := createQuote(t, env, accountB.ID, clientB, lines)

	// Both accounts start their own sequence at 0001.
	assert.Equal(t, first.Number, second.Number)
}

func TestCreateQuoteDefaultsTax(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	quote, err := env.quotes.CreateQuote(context.Background(), account.ID, CreateQuoteRequest{
		ClientID:      clientID.String(),
		Title:         "No tax job",
		TaxApplicable: boolPtr(false),
		TaxRate:       floatPtr(10),
		Lines:         []QuoteLineInput{{Concept: "Labour", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, "100", quote.Subtotal)
	assert.Equal(t, "0", quote.TaxAmount)
	assert.Equal(t, "100", quote.Total)
	assert.False(t, quote.TaxApplicable)
}

func TestCreateQuoteRejectsForeignClient(t *testing.T) {
	env := newTestEnv(t)
	accountA := seedAccount(t, env.db, "a@example.com")
	accountB := seedAccount(t, env.db, "b@example.com")
	clientA := seedClient(t, env, accountA.ID)

	_, err := env.quotes.CreateQuote(context.Background(), accountB.ID, CreateQuoteRequest{
		ClientID: clientA.String(),
		Title:    "Should not exist",
		Lines:    []QuoteLineInput{{Concept: "Labour", Quantity: 1, UnitPrice: 10}},
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateQuoteLineRequiresConcept(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	_, err := env.quotes.CreateQuote(context.Background(), account.ID, CreateQuoteRequest{
		ClientID: clientID.String(),
		Title:    "Bad lines",
		Lines:    []QuoteLineInput{{Quantity: 1, UnitPrice: 10}},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestQuoteTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	accountA := seedAccount(t, env.db, "a@example.com")
	accountB := seedAccount(t, env.db, "b@example.com")
	clientA := seedClient(t, env, accountA.ID)

	quote := createQuote(t, env, accountA.ID, clientA, []QuoteLineInput{
		{Concept: "Labour", Quantity: 1, UnitPrice: 10},
	})
	quoteID, err := uuid.Parse(quote.ID)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = env.quotes.GetQuote(ctx, accountB.ID, quoteID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = env.quotes.ChangeQuoteStatus(ctx, accountB.ID, quoteID, model.QuoteStatusSent)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = env.quotes.DeleteQuote(ctx, accountB.ID, quoteID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// The owner still sees it untouched.
	kept, err := env.quotes.GetQuote(ctx, accountA.ID, quoteID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusDraft, kept.Status)
}

func TestChangeQuoteStatusRejectionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
		{Concept: "Labour", Quantity: 1, UnitPrice: 10},
	})
	quoteID, err := uuid.Parse(quote.ID)
	require.NoError(t, err)
	ctx := context.Background()

	rejected, err := env.quotes.ChangeQuoteStatus(ctx, account.ID, quoteID, model.QuoteStatusRejected)
	require.NoError(t, err)
	require.NotNil(t, rejected.RejectedAt)
	require.NotNil(t, rejected.DaysUntilPurge)
	assert.Equal(t, model.RetentionDays, *rejected.DaysUntilPurge)

	// Leaving rejected clears the timestamp and the purge countdown.
	revived, err := env.quotes.ChangeQuoteStatus(ctx, account.ID, quoteID, model.QuoteStatusSent)
	require.NoError(t, err)
	assert.Nil(t, revived.RejectedAt)
	assert.Nil(t, revived.DaysUntilPurge)
}

func TestReRejectRestartsRetentionWindow(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
		{Concept: "Labour", Quantity: 1, UnitPrice: 10},
	})
	quoteID, err := uuid.Parse(quote.ID)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = env.quotes.ChangeQuoteStatus(ctx, account.ID, quoteID, model.QuoteStatusRejected)
	require.NoError(t, err)

	past := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, env.db.Model(&model.Quote{}).
		Where("id = ?", quoteID).
		Update("rejected_at", past).Error)

	// Rejecting again stamps a fresh timestamp and restarts the countdown.
	rerejected, err := env.quotes.ChangeQuoteStatus(ctx, account.ID, quoteID, model.QuoteStatusRejected)
	require.NoError(t, err)
	require.NotNil(t, rerejected.DaysUntilPurge)
	assert.Equal(t, model.RetentionDays, *rerejected.DaysUntilPurge)

	var stored model.Quote
	require.NoError(t, env.db.First(&stored, "id = ?", quoteID).Error)
	require.NotNil(t, stored.RejectedAt)
	assert.True(t, stored.RejectedAt.After(past.Add(time.Hour)))
}

func TestDaysUntilPurgeCountdown(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
		{Concept: "Labour", Quantity: 1, UnitPrice: 10},
	})
	quoteID, err := uuid.Parse(quote.ID)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = env.quotes.ChangeQuoteStatus(ctx, account.ID, quoteID, model.QuoteStatusRejected)
	require.NoError(t, err)

	backdate := func(d time.Duration) {
		t.Helper()
		past := time.Now().Add(-d)
		require.NoError(t, env.db.Model(&model.Quote{}).
			Where("id = ?", quoteID).
			Update("rejected_at", past).Error)
	}

	backdate(10 * 24 * time.Hour)
	resp, err := env.quotes.GetQuote(ctx, account.ID, quoteID)
	require.NoError(t, err)
	require.NotNil(t, resp.DaysUntilPurge)
	assert.Equal(t, 20, *resp.DaysUntilPurge)

	// Past the retention window the countdown floors at zero.
	backdate(35 * 24 * time.Hour)
	resp, err = env.quotes.GetQuote(ctx, account.ID, quoteID)
	require.NoError(t, err)
	require.NotNil(t, resp.DaysUntilPurge)
	assert.Equal(t, 0, *resp.DaysUntilPurge)
}

func TestChangeQuoteStatusUnknown(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
		{Concept: "Labour", Quantity: 1, UnitPrice: 10},
	})
	quoteID, err := uuid.Parse(quote.ID)
	require.NoError(t, err)

	_, err = env.quotes.ChangeQuoteStatus(context.Background(), account.ID, quoteID, "approved")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateQuoteReplacesLinesAndRecomputes(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)

	quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
		{Concept: "Labour", Quantity: 2, UnitPrice: 50},
	})
	quoteID, err := uuid.Parse(quote.ID)
	require.NoError(t, err)

	updated, err := env.quotes.UpdateQuote(context.Background(), account.ID, quoteID, UpdateQuoteRequest{
		Title:   "Boiler repair and descaling",
		TaxRate: floatPtr(10),
		Lines: []QuoteLineInput{
			{Concept: "Labour", Quantity: 1, UnitPrice: 60},
			{Concept: "Descaler", Quantity: 2, UnitPrice: 20},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Boiler repair and descaling", updated.Title)
	require.Len(t, updated.Lines, 2)
	assert.Equal(t, "Labour", updated.Lines[0].Concept)
	assert.Equal(t, "Descaler", updated.Lines[1].Concept)
	assert.Equal(t, "100", updated.Subtotal)
	assert.Equal(t, "10", updated.TaxAmount)
	assert.Equal(t, "110", updated.Total)
	// The document number survives edits.
	assert.Equal(t, quote.Number, updated.Number)
}

func TestListQuotesFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)
	ctx := context.Background()

	lines := []QuoteLineInput{{Concept: "Labour", Quantity: 1, UnitPrice: 10}}
	first := createQuote(t, env, account.ID, clientID, lines)
	createQuote(t, env, account.ID, clientID, lines)

	firstID, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	_, err = env.quotes.ChangeQuoteStatus(ctx, account.ID, firstID, model.QuoteStatusSent)
	require.NoError(t, err)

	sent, err := env.quotes.ListQuotes(ctx, account.ID, model.QuoteStatusSent)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, first.ID, sent[0].ID)

	_, err = env.quotes.ListQuotes(ctx, account.ID, "bogus")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestQuoteStatistics(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)
	ctx := context.Background()

	lines := []QuoteLineInput{{Concept: "Labour", Quantity: 1, UnitPrice: 10}}
	ids := make([]uuid.UUID, 0, 4)
	for i := 0; i < 4; i++ {
		quote := createQuote(t, env, account.ID, clientID, lines)
		id, err := uuid.Parse(quote.ID)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	_, err := env.quotes.ChangeQuoteStatus(ctx, account.ID, ids[0], model.QuoteStatusAccepted)
	require.NoError(t, err)
	_, err = env.quotes.ChangeQuoteStatus(ctx, account.ID, ids[1], model.QuoteStatusRejected)
	require.NoError(t, err)

	stats, err := env.quotes.GetStatistics(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.Accepted)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, 25.0, stats.ConversionRate)
}

func TestQuoteStatisticsEmpty(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")

	stats, err := env.quotes.GetStatistics(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
	assert.Equal(t, 0.0, stats.ConversionRate)
}

func TestDeleteQuoteRemovesLines(t *testing.T) {
	env := newTestEnv(t)
	account := seedAccount(t, env.db, "tech@example.com")
	clientID := seedClient(t, env, account.ID)
	ctx := context.Background()

	quote := createQuote(t, env, account.ID, clientID, []QuoteLineInput{
		{Concept: "Labour", Quantity: 1, UnitPrice: 10},
		{Concept: "Parts", Quantity: 1, UnitPrice: 5},
	})
	quoteID, err := uuid.Parse(quote.ID)
	require.NoError(t, err)

	require.NoError(t, env.quotes.DeleteQuote(ctx, account.ID, quoteID))

	_, err = env.quotes.GetQuote(ctx, account.ID, quoteID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var lineCount int64
	require.NoError(t, env.db.Model(&model.QuoteLine{}).Where("quote_id = ?", quoteID).Count(&lineCount).Error)
	assert.Zero(t, lineCount)
}
