package handlers

import (
	"net/http"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/middleware"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type RobotRequestHandler struct {
	*BaseHandler
	requestService services.RobotRequestService
}

func NewRobotRequestHandler(base *BaseHandler, requestService services.RobotRequestService) *RobotRequestHandler {
	return &RobotRequestHandler{
		BaseHandler:    base,
		requestService: requestService,
	}
}

func (h *RobotRequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/robot-requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", h.Create)
		requests.GET("", h.ListMine)
		requests.GET("/:id", h.GetByID)
	}

	admin := r.Group("/admin/robot-requests")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("", h.ListAll)
		admin.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *RobotRequestHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRobotRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.Create(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *RobotRequestHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	requests, total, err := h.requestService.ListByUser(userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(requests, total, page, pageSize))
}

func (h *RobotRequestHandler) GetByID(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	request, err := h.requestService.GetByID(userID, h.GetUserRole(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RobotRequestHandler) ListAll(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	requests, total, err := h.requestService.ListAll(page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(requests, total, page, pageSize))
}

func (h *RobotRequestHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateRobotRequestStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.UpdateStatus(c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}
