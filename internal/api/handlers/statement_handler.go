package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"statement-service/internal/api/middleware"
	"statement-service/internal/api/responses"
	"statement-service/internal/core/session"
	"statement-service/internal/core/statement"
	"statement-service/internal/domain"
	"statement-service/internal/history"
	"statement-service/internal/storage"
)

// maxLogoBytes caps uploaded logo images.
const maxLogoBytes = 2 << 20

// StatementHandler serves the reconciliation and statement-generation API.
type StatementHandler struct {
	service  statement.Service
	sessions *session.Store
	docs     storage.DocumentStore
	history  history.Repository
}

// NewStatementHandler creates a new statement handler.
func NewStatementHandler(service statement.Service, sessions *session.Store, docs storage.DocumentStore, hist history.Repository) *StatementHandler {
	return &StatementHandler{
		service:  service,
		sessions: sessions,
		docs:     docs,
		history:  hist,
	}
}

// HandleUpload ingests an uploaded spreadsheet into the session's
// file-sourced collection, replacing whatever was loaded before.
func (h *StatementHandler) HandleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Transaction file (.xls, .xlsx) missing or invalid")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Unsupported transaction file extension: %s", ext))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not open the uploaded file")
		return
	}
	defer file.Close()

	result, err := h.service.Ingest(file)
	if err != nil {
		h.respondIngestError(c, err)
		return
	}

	sess := h.sessions.Get(middleware.OwnerID(c))
	sess.SetFileTransactions(result.Transactions)

	responses.Success(c, gin.H{
		"transactionCount": len(result.Transactions),
		"customers":        result.Customers,
	}, fmt.Sprintf("Loaded %d transactions for %d customers", len(result.Transactions), len(result.Customers)))
}

func (h *StatementHandler) respondIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, statement.ErrMalformedFile):
		responses.Error(c, http.StatusBadRequest, "File is not a readable spreadsheet", err.Error())
	case errors.Is(err, statement.ErrHeaderNotFound):
		responses.Error(c, http.StatusUnprocessableEntity, "Could not locate a customer column header", err.Error())
	case errors.Is(err, statement.ErrEmptyData):
		responses.Error(c, http.StatusUnprocessableEntity, "The sheet has a header but no data rows", err.Error())
	case errors.Is(err, statement.ErrNoValidTransactions):
		responses.Error(c, http.StatusUnprocessableEntity, "The file was readable but contained no usable transactions", err.Error())
	default:
		responses.L().Error("ingestion failed", zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Error processing the uploaded file", err.Error())
	}
}

// HandleListTransactions returns the session's current collections.
func (h *StatementHandler) HandleListTransactions(c *gin.Context) {
	fileTxs, manualTxs, _, _ := h.sessions.Get(middleware.OwnerID(c)).Snapshot()
	responses.Success(c, gin.H{
		"fileTransactions":   fileTxs,
		"manualTransactions": manualTxs,
	}, "")
}

// HandleAddManual records one manually entered transaction.
func (h *StatementHandler) HandleAddManual(c *gin.Context) {
	var entry statement.ManualEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		responses.Error(c, http.StatusBadRequest, "Invalid manual transaction payload", err.Error())
		return
	}

	tx, err := statement.NewManualTransaction(entry, time.Now())
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	h.sessions.Get(middleware.OwnerID(c)).AddManual(tx)
	responses.Success(c, tx, "Manual transaction recorded")
}

// HandleDeleteManual removes one manual transaction by id.
func (h *StatementHandler) HandleDeleteManual(c *gin.Context) {
	id := c.Param("id")
	if !h.sessions.Get(middleware.OwnerID(c)).DeleteManual(id) {
		responses.Error(c, http.StatusNotFound, fmt.Sprintf("No manual transaction with id %s", id))
		return
	}
	responses.Success(c, nil, "Manual transaction deleted")
}

// HandleClearFile drops every file-sourced transaction from the session.
func (h *StatementHandler) HandleClearFile(c *gin.Context) {
	h.sessions.Get(middleware.OwnerID(c)).ClearFileTransactions()
	responses.Success(c, nil, "File transactions cleared")
}

// HandleSetConfig stores the statement configuration for the session.
func (h *StatementHandler) HandleSetConfig(c *gin.Context) {
	var cfg domain.StatementConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		responses.Error(c, http.StatusBadRequest, "Invalid statement configuration", err.Error())
		return
	}

	now := time.Now()
	cfg.StartDate = statement.NormalizeDate(cfg.StartDate, now)
	cfg.EndDate = statement.NormalizeDate(cfg.EndDate, now)

	h.sessions.Get(middleware.OwnerID(c)).SetConfig(cfg)
	responses.Success(c, cfg, "Statement configuration saved")
}

// HandleSetLogo stores the uploaded logo image for the session.
func (h *StatementHandler) HandleSetLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Logo image missing or invalid")
		return
	}
	if fileHeader.Size > maxLogoBytes {
		responses.Error(c, http.StatusBadRequest, "Logo image exceeds the 2 MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not open the uploaded logo")
		return
	}
	defer file.Close()

	logo, err := io.ReadAll(io.LimitReader(file, maxLogoBytes))
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Could not read the uploaded logo")
		return
	}

	h.sessions.Get(middleware.OwnerID(c)).SetLogo(logo)
	responses.Success(c, nil, "Logo saved")
}

type generateRequest struct {
	CustomerName string `json:"customerName"`
}

// HandleGenerate builds the ledger for one customer from immutable session
// snapshots, renders the statement document, persists it, and returns the
// bytes as an attachment. Persistence is store-then-append without
// compensation: a failure after rendering is reported through response
// headers while the document itself is still delivered.
func (h *StatementHandler) HandleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Invalid generate request", err.Error())
		return
	}

	ownerID := middleware.OwnerID(c)
	sess := h.sessions.Get(ownerID)

	var result *statement.RenderResult
	var ledger *domain.Ledger
	err := sess.SerializeGeneration(func() error {
		fileTxs, manualTxs, cfg, logo := sess.Snapshot()
		var err error
		result, ledger, err = h.service.Generate(fileTxs, manualTxs, req.CustomerName, cfg, logo)
		return err
	})
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}

	reference, storeErr := h.docs.Store(c.Request.Context(), ownerID, result.FileName, result.Content)
	c.Header("X-Document-Stored", fmt.Sprintf("%t", storeErr == nil))

	historySaved := false
	if storeErr == nil {
		item := domain.StatementHistoryItem{
			ID:           uuid.NewString(),
			OwnerID:      ownerID,
			CustomerName: ledger.CustomerName,
			Period:       ledger.Config.PeriodString(),
			FileName:     result.FileName,
			Reference:    reference,
			Config:       ledger.Config,
			GeneratedAt:  time.Now(),
		}
		if appendErr := h.history.Append(c.Request.Context(), item); appendErr != nil {
			responses.L().Error("history append failed after document store",
				zap.String("owner", ownerID), zap.String("file", result.FileName), zap.Error(appendErr))
		} else {
			historySaved = true
		}
	} else {
		responses.L().Error("document store failed",
			zap.String("owner", ownerID), zap.String("file", result.FileName), zap.Error(storeErr))
	}
	c.Header("X-History-Saved", fmt.Sprintf("%t", historySaved))

	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *StatementHandler) respondGenerateError(c *gin.Context, err error) {
	var unknown *statement.UnknownCustomerError
	switch {
	case errors.Is(err, statement.ErrRenderTargetMissing):
		responses.Error(c, http.StatusBadRequest, "Select a customer before generating a statement")
	case errors.As(err, &unknown):
		responses.Error(c, http.StatusNotFound, unknown.Error())
	default:
		responses.L().Error("statement generation failed", zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Error generating the statement", err.Error())
	}
}

// HandleHistory lists the owner's generated statements, newest first.
func (h *StatementHandler) HandleHistory(c *gin.Context) {
	items, err := h.history.ListByOwner(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		responses.L().Error("history listing failed", zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Error listing statement history", err.Error())
		return
	}
	responses.Success(c, items, "")
}
