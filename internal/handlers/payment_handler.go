package handlers

import (
	"net/http"

	"tradewizard_backend/internal/dto"
	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/middleware"
	"tradewizard_backend/internal/models"
	"tradewizard_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")

	// The provider callback authenticates nobody and must always get a 200.
	payments.POST("/mpesa/callback", h.MpesaCallback)

	authed := payments.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/mpesa/initiate", h.InitiateMpesa)
		authed.POST("/mpesa/verify", h.VerifyMpesa)
		authed.POST("/card/process", h.ProcessCard)
		authed.GET("/:transactionId/status", h.GetStatus)
		authed.GET("", h.ListMine)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/users/:userId/transactions", h.ListForUser)
	}
}

func (h *PaymentHandler) InitiateMpesa(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.MpesaInitiateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.paymentService.InitiateMpesaPayment(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (h *PaymentHandler) VerifyMpesa(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.MpesaVerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.paymentService.VerifyByCorrelationID(userID, h.GetUserRole(c), req.CheckoutRequestID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MpesaCallback ingests the asynchronous provider result. The response is
// always HTTP 200; a malformed payload gets a negative acknowledgement body
// rather than an error status, which is what the provider retries on.
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	var envelope dto.MpesaCallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.CtxWarn(c.Request.Context(), "malformed mpesa callback", "error", err.Error())
		c.JSON(http.StatusOK, dto.MpesaAck{ResultCode: 1, ResultDesc: "Rejected"})
		return
	}

	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		logger.CtxWarn(c.Request.Context(), "mpesa callback without checkout request id")
		c.JSON(http.StatusOK, dto.MpesaAck{ResultCode: 1, ResultDesc: "Rejected"})
		return
	}

	h.paymentService.HandleMpesaCallback(c.Request.Context(), &cb)
	c.JSON(http.StatusOK, dto.MpesaAck{ResultCode: 0, ResultDesc: "Accepted"})
}

func (h *PaymentHandler) ProcessCard(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CardPaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.paymentService.ProcessCardPayment(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.paymentService.VerifyPayment(userID, h.GetUserRole(c), c.Param("transactionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	kind := models.TransactionKind(c.Query("kind"))

	txs, total, err := h.paymentService.ListUserTransactions(userID, kind, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(txs, total, page, pageSize))
}

// ListForUser lets an admin inspect another user's payment history.
func (h *PaymentHandler) ListForUser(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	kind := models.TransactionKind(c.Query("kind"))

	txs, total, err := h.paymentService.ListUserTransactions(c.Param("userId"), kind, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(txs, total, page, pageSize))
}
