package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/api/audit", authMW, h.GetAuditLog)
}

// GetAuditLog returns the account's activity trail, newest first
// @Summary      Audit log
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Entries per page (max 100)"
// @Success      200    {object}  response.Response{data=[]service.AuditEntryResponse}
// @Router       /api/audit [get]
func (h *AuditHandler) GetAuditLog(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.auditService.GetAuditLog(c.Request.Context(), middleware.AccountID(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"entries": entries,
		"meta":    pagination.NewMeta(params, total),
	}))
}
