package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	quoteService service.QuoteService
}

func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	quotes := router.Group("/api/quotes", authMW)
	{
		quotes.GET("", h.ListQuotes)
		quotes.POST("", h.CreateQuote)
		quotes.GET("/client/:clientId", h.ListQuotesByClient)
		quotes.GET("/:id", h.GetQuote)
		quotes.PUT("/:id", h.UpdateQuote)
		quotes.PATCH("/:id/status", h.ChangeQuoteStatus)
		quotes.DELETE("/:id", h.DeleteQuote)
	}

	stats := router.Group("/api/statistics", authMW)
	{
		stats.GET("/quotes", h.GetStatistics)
	}
}

// ListQuotes returns the account's quotes, optionally filtered by status
// @Summary      List quotes
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft, sent, accepted, rejected)"
// @Success      200     {object}  response.Response{data=[]service.QuoteResponse}
// @Router       /api/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.quoteService.ListQuotes(c.Request.Context(), middleware.AccountID(c), c.Query("status"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotes))
}

// ListQuotesByClient returns all quotes addressed to one client
// @Summary      List quotes by client
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        clientId  path      string  true  "Client ID"
// @Success      200       {object}  response.Response{data=[]service.QuoteResponse}
// @Router       /api/quotes/client/{clientId} [get]
func (h *QuoteHandler) ListQuotesByClient(c *gin.Context) {
	clientID, err := parseID(c, "clientId")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	quotes, err := h.quoteService.ListQuotesByClient(c.Request.Context(), middleware.AccountID(c), clientID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotes))
}

// CreateQuote creates a quote with its lines in one transaction
// @Summary      Create quote
// @Description  Assigns the next sequential document number, computes totals from the lines, and stores quote plus lines atomically
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateQuoteRequest  true  "Quote Payload"
// @Success      201      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// GetQuote returns one quote with its lines
// @Summary      Get quote
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), middleware.AccountID(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// UpdateQuote replaces a quote's fields and line set, recomputing totals
// @Summary      Update quote
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Quote ID"
// @Param        payload  body      service.UpdateQuoteRequest  true  "Quote Payload"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	var req service.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.UpdateQuote(c.Request.Context(), middleware.AccountID(c), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// ChangeQuoteStatus transitions a quote through its lifecycle
// @Summary      Change quote status
// @Description  Moves a quote between draft, sent, accepted, and rejected; entering rejected stamps the rejection time, leaving it clears the stamp
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Quote ID"
// @Param        payload  body      statusChangeRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/{id}/status [patch]
func (h *QuoteHandler) ChangeQuoteStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.ChangeQuoteStatus(c.Request.Context(), middleware.AccountID(c), id, req.Status)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// DeleteQuote removes a quote and its lines
// @Summary      Delete quote
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), middleware.AccountID(c), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "quote deleted"}))
}

// GetStatistics returns quote totals by status and the conversion rate
// @Summary      Quote statistics
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.QuoteStatistics}
// @Router       /api/statistics/quotes [get]
func (h *QuoteHandler) GetStatistics(c *gin.Context) {
	stats, err := h.quoteService.GetStatistics(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
