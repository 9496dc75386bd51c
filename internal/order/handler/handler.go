package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/order"
	"github.com/avelia/catalog-service/internal/order/dto"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/response"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/orders")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var input dto.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	o, err := h.uc.Create(c.Request.Context(), &input)
	if err != nil {
		h.logger.Error("create order failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Created(c, o)
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	criteria := &dto.ListCriteria{
		UserID: c.Query("user_id"),
		Limit:  intQuery(c, "limit", 20),
		Page:   intQuery(c, "page", 1),
	}
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(raw)
		criteria.Status = &s
	}

	orders, err := h.uc.List(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	o, err := h.uc.UpdateStatus(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, o)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
