package handler

import (
	"net/http"
	"strconv"

	"nutscredit/internal/middleware"
	"nutscredit/internal/service"
	"nutscredit/pkg/pagination"
	"nutscredit/pkg/response"

	"github.com/gin-gonic/gin"
)

type NutHandler struct {
	nutService service.NutService
}

func NewNutHandler(nutService service.NutService) *NutHandler {
	return &NutHandler{nutService: nutService}
}

func (h *NutHandler) RegisterRoutes(router *gin.RouterGroup) {
	nuts := router.Group("/api/nuts")
	{
		nuts.GET("", middleware.RequireAuth(), h.ListNuts)
		nuts.POST("", middleware.RequireAuth(), h.CreateNut)
		nuts.POST("/:name/packages", middleware.RequireAuth(), h.AdjustPackages)
	}
}

type createNutRequest struct {
	Name     string `json:"name" binding:"required"`
	Packages int    `json:"packages"`
}

type adjustPackagesRequest struct {
	Delta string `json:"delta" binding:"required"`
}

// ListNuts returns all nut types with their package counts
// @Summary      List nuts
// @Tags         nuts
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response{data=[]service.NutResponse}
// @Router       /api/nuts [get]
func (h *NutHandler) ListNuts(c *gin.Context) {
	params := pagination.Parse(c)

	nuts, total, err := h.nutService.ListNuts(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   nuts,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// CreateNut adds a new nut type
// @Summary      Create nut
// @Description  Adds a nut type with an optional package count. A duplicate name is a no-op.
// @Tags         nuts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      createNutRequest  true  "Nut payload"
// @Success      201      {object}  response.Response{data=service.NutResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/nuts [post]
func (h *NutHandler) CreateNut(c *gin.Context) {
	var req createNutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	nut, created, err := h.nutService.AddNut(c.Request.Context(), callerName(c), req.Name, req.Packages)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, response.Success(status, nut))
}

// AdjustPackages applies a signed delta to a nut's package count
// @Summary      Adjust nut packages
// @Tags         nuts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name     path      string                 true  "Nut name"
// @Param        payload  body      adjustPackagesRequest  true  "Signed delta"
// @Success      200      {object}  response.Response{data=service.NutResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/nuts/{name}/packages [post]
func (h *NutHandler) AdjustPackages(c *gin.Context) {
	var req adjustPackagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	delta, err := strconv.Atoi(req.Delta)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "delta must be an integer"))
		return
	}

	nut, err := h.nutService.AdjustPackages(c.Request.Context(), callerName(c), c.Param("name"), delta)
	if err != nil {
		if err == service.ErrNutNotFound {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, nut))
}
