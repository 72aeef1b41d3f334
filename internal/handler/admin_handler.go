package handler

import (
	"net/http"

	"nutscredit/internal/auth"
	"nutscredit/internal/middleware"
	"nutscredit/internal/service"
	"nutscredit/pkg/pagination"
	"nutscredit/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService service.AdminService
	guard        *auth.Guard
}

func NewAdminHandler(adminService service.AdminService, guard *auth.Guard) *AdminHandler {
	return &AdminHandler{adminService: adminService, guard: guard}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admins := router.Group("/api/admins")
	{
		admins.GET("", middleware.RequireAuth(), h.ListAdmins)
		admins.POST("", middleware.RequireMainAuthority(h.guard), h.CreateAdmin)
	}
}

type createAdminRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListAdmins returns all registered admins
// @Summary      List admins
// @Tags         admins
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AdminResponse}
// @Router       /api/admins [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	params := pagination.Parse(c)

	admins, total, err := h.adminService.ListAdmins(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   admins,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// CreateAdmin registers a new admin (main authority only)
// @Summary      Create admin
// @Tags         admins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      createAdminRequest  true  "Admin payload"
// @Success      201      {object}  response.Response{data=service.AdminResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/admins [post]
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	admin, created, err := h.adminService.AddAdmin(c.Request.Context(), callerID(c), req.Name)
	if err != nil {
		if err == service.ErrNotAuthorized {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, response.Success(status, admin))
}
