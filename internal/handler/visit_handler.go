package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	visitService service.VisitService
}

func NewVisitHandler(visitService service.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

func (h *VisitHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	visits := router.Group("/api/visits", authMW)
	{
		visits.GET("", h.ListVisits)
		visits.GET("/today", h.ListVisitsToday)
		visits.POST("", h.CreateVisit)
		visits.GET("/:id", h.GetVisit)
		visits.PUT("/:id", h.UpdateVisit)
		visits.PATCH("/:id/status", h.ChangeVisitStatus)
		visits.PATCH("/:id/complete", h.CompleteVisit)
		visits.DELETE("/:id", h.DeleteVisit)
	}
}

// statusChangeRequest carries a bare status transition.
type statusChangeRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListVisits returns the account's visits, optionally filtered
// @Summary      List visits
// @Tags         visits
// @Security     BearerAuth
// @Produce      json
// @Param        date    query     string  false  "Filter by scheduled date (YYYY-MM-DD)"
// @Param        status  query     string  false  "Filter by status (pending, confirmed, completed, cancelled)"
// @Success      200     {object}  response.Response{data=[]service.VisitResponse}
// @Router       /api/visits [get]
func (h *VisitHandler) ListVisits(c *gin.Context) {
	visits, err := h.visitService.ListVisits(c.Request.Context(), middleware.AccountID(c), c.Query("date"), c.Query("status"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, visits))
}

// ListVisitsToday returns the account's visits scheduled for today
// @Summary      List today's visits
// @Tags         visits
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.VisitResponse}
// @Router       /api/visits/today [get]
func (h *VisitHandler) ListVisitsToday(c *gin.Context) {
	visits, err := h.visitService.ListVisitsToday(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, visits))
}

// CreateVisit schedules a visit for one of the account's clients
// @Summary      Create visit
// @Tags         visits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.VisitRequest  true  "Visit Payload"
// @Success      201      {object}  response.Response{data=service.VisitResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/visits [post]
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	var req service.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	visit, err := h.visitService.CreateVisit(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, visit))
}

// GetVisit returns one visit by id
// @Summary      Get visit
// @Tags         visits
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Visit ID"
// @Success      200  {object}  response.Response{data=service.VisitResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/visits/{id} [get]
func (h *VisitHandler) GetVisit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	visit, err := h.visitService.GetVisit(c.Request.Context(), middleware.AccountID(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visit))
}

// UpdateVisit replaces a visit's fields
// @Summary      Update visit
// @Tags         visits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Visit ID"
// @Param        payload  body      service.VisitRequest  true  "Visit Payload"
// @Success      200      {object}  response.Response{data=service.VisitResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/visits/{id} [put]
func (h *VisitHandler) UpdateVisit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	var req service.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	visit, err := h.visitService.UpdateVisit(c.Request.Context(), middleware.AccountID(c), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visit))
}

// ChangeVisitStatus transitions a visit's status
// @Summary      Change visit status
// @Tags         visits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Visit ID"
// @Param        payload  body      statusChangeRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.VisitResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/visits/{id}/status [patch]
func (h *VisitHandler) ChangeVisitStatus(c *gin.Context) {
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

	visit, err := h.visitService.ChangeVisitStatus(c.Request.Context(), middleware.AccountID(c), id, req.Status)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visit))
}

// CompleteVisit marks a visit completed with optional sign-off
// @Summary      Complete visit
// @Tags         visits
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Visit ID"
// @Param        payload  body      service.CompleteVisitRequest  true  "Completion Payload"
// @Success      200      {object}  response.Response{data=service.VisitResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/visits/{id}/complete [patch]
func (h *VisitHandler) CompleteVisit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	var req service.CompleteVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	visit, err := h.visitService.CompleteVisit(c.Request.Context(), middleware.AccountID(c), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, visit))
}

// DeleteVisit removes a visit
// @Summary      Delete visit
// @Tags         visits
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Visit ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/visits/{id} [delete]
func (h *VisitHandler) DeleteVisit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	if err := h.visitService.DeleteVisit(c.Request.Context(), middleware.AccountID(c), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "visit deleted"}))
}
