package handlers

import (
	"net/http"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/middleware"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subs := r.Group("/subscriptions")

	subs.GET("/plans", h.ListPlans)
	subs.GET("/plans/:id", h.GetPlan)

	authed := subs.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/subscribe", h.Subscribe)
		authed.POST("/cancel/:id", h.Cancel)
		authed.GET("/status", h.Status)
		authed.GET("", h.ListMine)
	}

	admin := subs.Group("/plans")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.CreatePlan)
		admin.PUT("/:id", h.UpdatePlan)
		admin.DELETE("/:id", h.DeactivatePlan)
	}
}

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	activeOnly := c.Query("include_inactive") != "true"

	plans, err := h.subscriptionService.ListPlans(activeOnly)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *SubscriptionHandler) GetPlan(c *gin.Context) {
	plan, err := h.subscriptionService.GetPlan(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.Cancel(userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(models.TransactionStatusCancelled)})
}

func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.subscriptionService.Status(userID, c.Query("plan_id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	txs, total, err := h.subscriptionService.ListUserSubscriptions(userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(txs, total, page, pageSize))
}

func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.subscriptionService.CreatePlan(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.subscriptionService.UpdatePlan(c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *SubscriptionHandler) DeactivatePlan(c *gin.Context) {
	if err := h.subscriptionService.DeactivatePlan(c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
