package service

import (
	"context"
	"fmt"
	"testing"

	"backend/internal/auth"
	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// testEnv wires the full service layer over one test database. The hub is nil
// so no realtime machinery runs in tests.
type testEnv struct {
	db        *gorm.DB
	auth      AuthService
	clients   ClientService
	visits    VisitService
	quotes    QuoteService
	dashboard DashboardService
	audit     AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	txManager := repository.NewTransactionManager(db)
	accountRepo := repository.NewAccountRepository(db)
	clientRepo := repository.NewClientRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	tokens := auth.NewManager(auth.Config{Secret: []byte("test-secret")})

	return &testEnv{
		db:        db,
		auth:      NewAuthService(accountRepo, tokens),
		clients:   NewClientService(clientRepo, auditRepo),
		visits:    NewVisitService(visitRepo, clientRepo, auditRepo, nil),
		quotes:    NewQuoteService(quoteRepo, clientRepo, auditRepo, txManager, nil),
		dashboard: NewDashboardService(visitRepo, clientRepo, quoteRepo),
		audit:     NewAuditService(auditRepo),
	}
}

func seedAccount(t *testing.T, db *gorm.DB, email string) *model.Account {
	t.Helper()
	account := &model.Account{Name: "Tech", Email: email, Password: "hash"}
	require.NoError(t, db.Create(account).Error)
	return account
}

func seedClient(t *testing.T, env *testEnv, accountID uuid.UUID) uuid.UUID {
	t.Helper()
	client, err := env.clients.CreateClient(context.Background(), accountID, ClientRequest{
		Name:  "Maria",
		Phone: "600111222",
	})
	require.NoError(t, err)
	id, err := uuid.Parse(client.ID)
	require.NoError(t, err)
	return id
}
