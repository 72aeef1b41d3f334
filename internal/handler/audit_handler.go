package handler

import (
	"net/http"

	"nutscredit/internal/auth"
	"nutscredit/internal/middleware"
	"nutscredit/internal/repository"
	"nutscredit/pkg/pagination"
	"nutscredit/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditRepo repository.AuditRepository
	guard     *auth.Guard
}

func NewAuditHandler(auditRepo repository.AuditRepository, guard *auth.Guard) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo, guard: guard}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit", middleware.RequireMainAuthority(h.guard), h.ListAuditLogs)
}

// ListAuditLogs returns the audit trail, newest first (main authority only)
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.AuditLog}
// @Failure      403  {object}  response.Response
// @Router       /api/audit [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditRepo.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   logs,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}
