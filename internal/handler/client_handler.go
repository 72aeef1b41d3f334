package handler

import (
	"net/http"

	"nutscredit/internal/middleware"
	"nutscredit/internal/service"
	"nutscredit/pkg/pagination"
	"nutscredit/pkg/response"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clients")
	{
		clients.GET("", middleware.RequireAuth(), h.ListClients)
		clients.POST("", middleware.RequireAuth(), h.CreateClient)
		clients.POST("/:name/credit", middleware.RequireAuth(), h.AdjustCredit)
	}
}

type createClientRequest struct {
	Name   string `json:"name" binding:"required"`
	Credit string `json:"credit"`
}

// ListClients returns all clients with their credit balances
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response{data=[]service.ClientResponse}
// @Router       /api/clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	params := pagination.Parse(c)

	clients, total, err := h.clientService.ListClients(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   clients,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// CreateClient adds a new client
// @Summary      Create client
// @Description  Adds a client with an optional starting credit. A duplicate name is a no-op.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      createClientRequest  true  "Client payload"
// @Success      201      {object}  response.Response{data=service.ClientResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	credit, err := parseOptionalAmount(req.Credit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	client, created, err := h.clientService.AddClient(c.Request.Context(), callerName(c), req.Name, credit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, response.Success(status, client))
}

// AdjustCredit applies a signed delta to a client's credit balance
// @Summary      Adjust client credit
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name     path      string                       true  "Client name"
// @Param        payload  body      service.AdjustCreditRequest  true  "Signed amount"
// @Success      200      {object}  response.Response{data=service.ClientResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/clients/{name}/credit [post]
func (h *ClientHandler) AdjustCredit(c *gin.Context) {
	var req service.AdjustCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	amount, err := service.ParseCredit(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	client, err := h.clientService.AdjustCredit(c.Request.Context(), callerName(c), c.Param("name"), amount)
	if err != nil {
		if err == service.ErrClientNotFound {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}
