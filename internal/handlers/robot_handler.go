package handlers

import (
	"net/http"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/middleware"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/repositories"
	"tradewizard_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type RobotHandler struct {
	*BaseHandler
	robotService services.RobotService
}

func NewRobotHandler(base *BaseHandler, robotService services.RobotService) *RobotHandler {
	return &RobotHandler{
		BaseHandler: base,
		robotService: robotService,
	}
}

func (h *RobotHandler) RegisterRoutes(r *gin.RouterGroup) {
	robots := r.Group("/robots")
	{
		robots.GET("", h.List)
		robots.GET("/:id", h.GetByID)
	}

	admin := r.Group("/robots")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}

func (h *RobotHandler) List(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	robots, total, err := h.robotService.List(c.Request.Context(), repositories.RobotFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(robots, total, page, pageSize))
}

func (h *RobotHandler) GetByID(c *gin.Context) {
	robot, err := h.robotService.GetByID(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

func (h *RobotHandler) Create(c *gin.Context) {
	var req dto.CreateRobotRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	robot, err := h.robotService.Create(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, robot)
}

func (h *RobotHandler) Update(c *gin.Context) {
	var req dto.UpdateRobotRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	robot, err := h.robotService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, robot)
}

func (h *RobotHandler) Delete(c *gin.Context) {
	if err := h.robotService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
