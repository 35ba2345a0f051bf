package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement-service/internal/api/middleware"
	"statement-service/internal/api/responses"
	"statement-service/internal/core/session"
	"statement-service/internal/core/statement"
	"statement-service/internal/domain"
)

type fakeService struct {
	ingestResult *domain.IngestResult
	ingestErr    error
	generateErr  error
}

func (f *fakeService) Ingest(io.Reader) (*domain.IngestResult, error) {
	return f.ingestResult, f.ingestErr
}

func (f *fakeService) Generate(fileTxs, manualTxs []domain.Transaction, customerName string, cfg domain.StatementConfig, logo []byte) (*statement.RenderResult, *domain.Ledger, error) {
	if f.generateErr != nil {
		return nil, nil, f.generateErr
	}
	ledger := &domain.Ledger{CustomerName: customerName, Config: cfg}
	return &statement.RenderResult{
		FileName: statement.StatementFileName(customerName, cfg.EndDate),
		Content:  []byte("%PDF-1.3 fake"),
	}, ledger, nil
}

type fakeDocStore struct {
	err    error
	stored []string
}

func (f *fakeDocStore) Store(_ context.Context, ownerID, fileName string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	ref := "gs://test-bucket/statements/" + ownerID + "/" + fileName
	f.stored = append(f.stored, ref)
	return ref, nil
}

type fakeHistory struct {
	err   error
	items []domain.StatementHistoryItem
}

func (f *fakeHistory) Append(_ context.Context, item domain.StatementHistoryItem) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeHistory) ListByOwner(context.Context, string) ([]domain.StatementHistoryItem, error) {
	return f.items, f.err
}

func testRouter(h *StatementHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	responses.InitLogger()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.OwnerIDKey, "alice")
	})
	router.POST("/statements/generate", h.HandleGenerate)
	router.GET("/statements/history", h.HandleHistory)
	router.POST("/transactions/manual", h.HandleAddManual)
	router.DELETE("/transactions/manual/:id", h.HandleDeleteManual)
	router.DELETE("/transactions/file", h.HandleClearFile)
	router.GET("/transactions", h.HandleListTransactions)
	return router
}

func newHandler(svc statement.Service, docs *fakeDocStore, hist *fakeHistory) (*StatementHandler, *session.Store) {
	sessions := session.NewStore()
	return NewStatementHandler(svc, sessions, docs, hist), sessions
}

func generateBody() *bytes.Reader {
	return bytes.NewReader([]byte(`{"customerName":"Acme Trading"}`))
}

func seedConfig(sessions *session.Store) {
	sessions.Get("alice").SetConfig(domain.StatementConfig{
		StartDate:      "2024-01-01",
		EndDate:        "2024-01-31",
		OpeningBalance: decimal.RequireFromString("1000.00"),
	})
}

func TestHandleGenerate_Success(t *testing.T) {
	docs := &fakeDocStore{}
	hist := &fakeHistory{}
	h, sessions := newHandler(&fakeService{}, docs, hist)
	seedConfig(sessions)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", generateBody())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "true", w.Header().Get("X-Document-Stored"))
	assert.Equal(t, "true", w.Header().Get("X-History-Saved"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "SOA_Acme_Trading_2024-01-31.pdf")
	require.Len(t, hist.items, 1)
	assert.Equal(t, "alice", hist.items[0].OwnerID)
	assert.Equal(t, "2024-01-01 to 2024-01-31", hist.items[0].Period)
}

func TestHandleGenerate_StoreFailureStillDeliversPDF(t *testing.T) {
	docs := &fakeDocStore{err: errors.New("bucket unreachable")}
	hist := &fakeHistory{}
	h, sessions := newHandler(&fakeService{}, docs, hist)
	seedConfig(sessions)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", generateBody())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "false", w.Header().Get("X-Document-Stored"))
	assert.Equal(t, "false", w.Header().Get("X-History-Saved"))
	assert.Empty(t, hist.items, "history must not be written when the document store failed")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestHandleGenerate_HistoryFailureReportedInHeader(t *testing.T) {
	docs := &fakeDocStore{}
	hist := &fakeHistory{err: errors.New("db down")}
	h, sessions := newHandler(&fakeService{}, docs, hist)
	seedConfig(sessions)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", generateBody())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Document-Stored"))
	assert.Equal(t, "false", w.Header().Get("X-History-Saved"))
}

func TestHandleGenerate_UnknownCustomer(t *testing.T) {
	svc := &fakeService{generateErr: &statement.UnknownCustomerError{
		Customer:   "Acme Trading",
		Suggestion: "Acme Trading Co",
	}}
	h, sessions := newHandler(svc, &fakeDocStore{}, &fakeHistory{})
	seedConfig(sessions)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", generateBody())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Acme Trading Co")
}

func TestHandleGenerate_MissingCustomer(t *testing.T) {
	svc := &fakeService{generateErr: statement.ErrRenderTargetMissing}
	h, _ := newHandler(svc, &fakeDocStore{}, &fakeHistory{})
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/statements/generate", strings.NewReader(`{"customerName":""}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManualTransactionLifecycle(t *testing.T) {
	h, sessions := newHandler(&fakeService{}, &fakeDocStore{}, &fakeHistory{})
	router := testRouter(h)

	body := `{"customerName":"Acme","trxType":"Payment","amount":"200.00","trxDate":"2024-01-10"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/manual", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	_, manualTxs, _, _ := sessions.Get("alice").Snapshot()
	require.Len(t, manualTxs, 1)

	req = httptest.NewRequest(http.MethodDelete, "/transactions/manual/"+manualTxs[0].ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/transactions/manual/"+manualTxs[0].ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAddManual_BlankCustomerRejected(t *testing.T) {
	h, _ := newHandler(&fakeService{}, &fakeDocStore{}, &fakeHistory{})
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/transactions/manual", strings.NewReader(`{"amount":"10"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleClearFile(t *testing.T) {
	h, sessions := newHandler(&fakeService{}, &fakeDocStore{}, &fakeHistory{})
	sessions.Get("alice").SetFileTransactions([]domain.Transaction{{ID: "F1"}})
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/transactions/file", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	fileTxs, _, _, _ := sessions.Get("alice").Snapshot()
	assert.Empty(t, fileTxs)
}

func TestHandleHistory(t *testing.T) {
	hist := &fakeHistory{items: []domain.StatementHistoryItem{{ID: "h1", CustomerName: "Acme"}}}
	h, _ := newHandler(&fakeService{}, &fakeDocStore{}, hist)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/statements/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme")
}
