package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fin-advisor-go/internal/advisory"
	"fin-advisor-go/internal/apperr"
	"fin-advisor-go/internal/database"
	"fin-advisor-go/internal/models"
	"fin-advisor-go/internal/snapshot"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

type listResponse[T any] struct {
	Rows      []T  `json:"rows"`
	Simulated bool `json:"simulated"`
}

// --- Helpers ---

func (s *APIServer) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

// fail writes err with the status its kind maps to.
func (s *APIServer) fail(c *gin.Context, where string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		s.logger.Error("request_failed", zap.String("where", where), zap.Int("status", status), zap.Error(err))
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, apiError{Code: "internal_server_error", Message: "internal server error"})
		return
	}
	c.JSON(status, apiError{Code: apperr.Code(err), Message: err.Error(), Reason: apperr.ReasonOf(err)})
}

func parseLimit(v string, def, min, max int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}

func splitTickers(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// --- Handlers ---

func (s *APIServer) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mode":       s.gw.Mode(),
		"start_time": s.startTime.Format(time.RFC3339),
		"uptime":     time.Since(s.startTime).String(),
	})
}

func (s *APIServer) listInstruments(c *gin.Context) {
	rows, err := s.gw.ListInstruments(c.Request.Context())
	if err != nil {
		s.fail(c, "ListInstruments", err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Instrument]{Rows: rows, Simulated: s.gw.Simulated()})
}

func (s *APIServer) getQuote(c *gin.Context) {
	q, err := s.gw.GetQuote(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		s.fail(c, "GetQuote", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *APIServer) getHistory(c *gin.Context) {
	rng := c.DefaultQuery("range", string(models.Range1M))
	points, err := s.gw.GetHistoricalSeries(c.Request.Context(), c.Param("ticker"), rng)
	if err != nil {
		s.fail(c, "GetHistoricalSeries", err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.HistoricalPoint]{Rows: points, Simulated: s.gw.Simulated()})
}

func (s *APIServer) getYieldCurve(c *gin.Context) {
	curve, err := s.gw.GetYieldCurve(c.Request.Context())
	if err != nil {
		s.fail(c, "GetYieldCurve", err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.GovBondYield]{Rows: curve, Simulated: s.gw.Simulated()})
}

func (s *APIServer) submitOrder(c *gin.Context) {
	var o models.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		s.badRequest(c, "invalid order body: "+err.Error())
		return
	}

	placed, err := s.gw.SubmitOrder(c.Request.Context(), o)
	if err != nil {
		s.fail(c, "SubmitOrder", err)
		return
	}

	rec := models.NewOrderRecord(placed, s.gw.Simulated())
	if err := s.journal.SaveOrder(c.Request.Context(), &rec); err != nil {
		// the order stands even when journaling fails
		s.logger.Warn("Failed to journal order", zap.String("order_id", placed.ID), zap.Error(err))
	}
	c.JSON(http.StatusCreated, placed)
}

func (s *APIServer) listOrders(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 50, 1, 500)
	rows, err := s.journal.ListOrders(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, "ListOrders", err)
		return
	}
	if rows == nil {
		rows = []models.OrderRecord{}
	}
	c.JSON(http.StatusOK, listResponse[models.OrderRecord]{Rows: rows, Simulated: s.gw.Simulated()})
}

func (s *APIServer) listPositions(c *gin.Context) {
	rows, err := s.gw.ListPositions(c.Request.Context())
	if err != nil {
		s.fail(c, "ListPositions", err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Position]{Rows: rows, Simulated: s.gw.Simulated()})
}

func (s *APIServer) getAccount(c *gin.Context) {
	bal, err := s.gw.GetAccountBalance(c.Request.Context())
	if err != nil {
		s.fail(c, "GetAccountBalance", err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

func (s *APIServer) deposit(c *gin.Context) {
	var d models.DepositDetails
	if err := c.ShouldBindJSON(&d); err != nil {
		s.badRequest(c, "invalid deposit body: "+err.Error())
		return
	}
	status, err := s.gw.InitiateDeposit(c.Request.Context(), d)
	if err != nil {
		s.fail(c, "InitiateDeposit", err)
		return
	}
	c.JSON(http.StatusAccepted, status)
}

func (s *APIServer) transfer(c *gin.Context) {
	var d models.TransferDetails
	if err := c.ShouldBindJSON(&d); err != nil {
		s.badRequest(c, "invalid transfer body: "+err.Error())
		return
	}
	status, err := s.gw.InitiateTransfer(c.Request.Context(), d)
	if err != nil {
		s.fail(c, "InitiateTransfer", err)
		return
	}
	c.JSON(http.StatusAccepted, status)
}

func (s *APIServer) withdraw(c *gin.Context) {
	var d models.WithdrawDetails
	if err := c.ShouldBindJSON(&d); err != nil {
		s.badRequest(c, "invalid withdrawal body: "+err.Error())
		return
	}
	status, err := s.gw.InitiateWithdraw(c.Request.Context(), d)
	if err != nil {
		s.fail(c, "InitiateWithdraw", err)
		return
	}
	c.JSON(http.StatusAccepted, status)
}

type snapshotResponse struct {
	models.HistorySnapshot
	Rows []models.HistoricalPoint `json:"rows,omitempty"`
}

func (s *APIServer) captureSnapshot(c *gin.Context) {
	var req snapshot.Request
	// Parameters may come as query string or JSON body.
	if err := c.ShouldBind(&req); err != nil && c.Request.ContentLength > 0 {
		s.badRequest(c, "invalid snapshot request: "+err.Error())
		return
	}
	snap, err := s.snapshots.Capture(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "CaptureSnapshot", err)
		return
	}
	c.JSON(http.StatusOK, snapshotResponse{HistorySnapshot: snap})
}

func (s *APIServer) getSnapshot(c *gin.Context) {
	snap, points, err := s.snapshots.Get(c.Request.Context(), c.Param("ticker"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, apiError{Code: "not_found", Message: "no snapshot for " + c.Param("ticker")})
		return
	}
	if err != nil {
		s.fail(c, "GetSnapshot", err)
		return
	}
	c.JSON(http.StatusOK, snapshotResponse{HistorySnapshot: snap, Rows: points})
}

func (s *APIServer) suggestStrategies(c *gin.Context) {
	var in advisory.StrategyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, "invalid strategy request: "+err.Error())
		return
	}
	resp, err := s.advisor.SuggestStrategies(c.Request.Context(), in)
	if err != nil {
		s.fail(c, "SuggestStrategies", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type summaryRequest struct {
	Tickers []string `json:"tickers"`
	Focus   string   `json:"focus"`
}

func (s *APIServer) summarizeMarket(c *gin.Context) {
	var req summaryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, "invalid summary request: "+err.Error())
			return
		}
	}
	if len(req.Tickers) == 0 {
		req.Tickers = splitTickers(c.Query("tickers"))
	}
	resp, err := s.advisor.SummarizeMarket(c.Request.Context(), req.Tickers, req.Focus)
	if err != nil {
		s.fail(c, "SummarizeMarket", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *APIServer) explain(c *gin.Context) {
	var req advisory.ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid explain request: "+err.Error())
		return
	}
	resp, err := s.advisor.Explain(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "Explain", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
