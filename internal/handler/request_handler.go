package handler

import (
	"net/http"

	"nutscredit/internal/auth"
	"nutscredit/internal/middleware"
	"nutscredit/internal/service"
	"nutscredit/pkg/pagination"
	"nutscredit/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	requestService service.RequestService
	guard          *auth.Guard
}

func NewRequestHandler(requestService service.RequestService, guard *auth.Guard) *RequestHandler {
	return &RequestHandler{requestService: requestService, guard: guard}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.GET("", middleware.RequireAuth(), h.ListRequests)
		requests.POST("", middleware.RequireAuth(), h.CreateRequest)
		requests.PUT("/:id/approve", middleware.RequireMainAuthority(h.guard), h.ApproveRequest)
		requests.PUT("/:id/reject", middleware.RequireMainAuthority(h.guard), h.RejectRequest)
	}
}

type createRequestRequest struct {
	NutName     string `json:"nut_name" binding:"required"`
	Packages    int    `json:"packages" binding:"required"`
	CreditPaid  string `json:"credit_paid"`
	Description string `json:"description"`
}

// ListRequests returns requests, optionally filtered by status
// @Summary      List requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (PENDING, APPROVED, REJECTED)"
// @Success      200     {object}  response.Response{data=[]service.RequestResponse}
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)
	status := c.Query("status")

	requests, total, err := h.requestService.ListRequests(c.Request.Context(), status, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   requests,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// CreateRequest submits a new pending request on behalf of the caller
// @Summary      Submit request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      createRequestRequest  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	creditPaid, err := parseOptionalAmount(req.CreditPaid)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid credit_paid value"))
		return
	}

	result, err := h.requestService.Submit(c.Request.Context(), service.SubmitRequestInput{
		AdminName:       callerName(c),
		NutName:         req.NutName,
		Packages:        req.Packages,
		CreditPaid:      creditPaid,
		Description:     req.Description,
		RequesterChatID: callerID(c),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ApproveRequest approves a pending request (main authority only)
// @Summary      Approve request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/approve [put]
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, service.DecisionApprove)
}

// RejectRequest rejects a pending request (main authority only)
// @Summary      Reject request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/requests/{id}/reject [put]
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	h.decide(c, service.DecisionReject)
}

func (h *RequestHandler) decide(c *gin.Context, action string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request ID"))
		return
	}

	result, err := h.requestService.Decide(c.Request.Context(), id, action, callerName(c), service.MessageRef{})
	if err != nil {
		if err == service.ErrRequestNotFound {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	if result.AlreadyDecided {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Request is already "+result.Request.Status))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result.Request))
}
