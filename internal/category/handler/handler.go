package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/category"
	"github.com/avelia/catalog-service/internal/category/dto"
	"github.com/avelia/catalog-service/internal/httpcache"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/response"
)

// CacheTag groups every cached category listing for bulk invalidation.
const CacheTag = "categories"

type CategoryHandler struct {
	uc        category.UseCase
	respCache *httpcache.Service
	logger    logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, respCache *httpcache.Service, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:        uc,
		respCache: respCache,
		logger:    log,
	}
}

func (h *CategoryHandler) RegisterRoutes(r gin.IRouter, cached gin.HandlerFunc) {
	categories := r.Group("/categories")
	{
		categories.GET("", cached, h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	subcategories := r.Group("/subcategories")
	{
		subcategories.GET("", cached, h.ListSubcategories)
		subcategories.POST("", h.CreateSubcategory)
		subcategories.PUT("/:id", h.UpdateSubcategory)
		subcategories.DELETE("/:id", h.DeleteSubcategory)
	}

	productTypes := r.Group("/product-types")
	{
		productTypes.GET("", cached, h.ListProductTypes)
		productTypes.POST("", h.CreateProductType)
		productTypes.PUT("/:id", h.UpdateProductType)
		productTypes.DELETE("/:id", h.DeleteProductType)
	}

	requests := r.Group("/category-requests")
	{
		requests.GET("", h.ListRequests)
		requests.POST("", h.SubmitRequest)
		requests.POST("/:id/review", h.ReviewRequest)
	}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	categories, err := h.uc.ListCategories(c.Request.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	cat, err := h.uc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cat)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input dto.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	cat, err := h.uc.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Created(c, cat)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var input dto.UpdateLevelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	cat, err := h.uc.UpdateCategory(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Success(c, cat)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.uc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Success(c, gin.H{"deleted": true})
}

func (h *CategoryHandler) ListSubcategories(c *gin.Context) {
	subs, err := h.uc.ListSubcategories(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, subs)
}

func (h *CategoryHandler) CreateSubcategory(c *gin.Context) {
	var input dto.CreateSubcategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	sub, err := h.uc.CreateSubcategory(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Created(c, sub)
}

func (h *CategoryHandler) UpdateSubcategory(c *gin.Context) {
	var input dto.UpdateLevelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	sub, err := h.uc.UpdateSubcategory(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Success(c, sub)
}

func (h *CategoryHandler) DeleteSubcategory(c *gin.Context) {
	if err := h.uc.DeleteSubcategory(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Success(c, gin.H{"deleted": true})
}

func (h *CategoryHandler) ListProductTypes(c *gin.Context) {
	types, err := h.uc.ListProductTypes(c.Request.Context(), c.Query("subcategory_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, types)
}

func (h *CategoryHandler) CreateProductType(c *gin.Context) {
	var input dto.CreateProductTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	t, err := h.uc.CreateProductType(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Created(c, t)
}

func (h *CategoryHandler) UpdateProductType(c *gin.Context) {
	var input dto.UpdateLevelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	t, err := h.uc.UpdateProductType(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Success(c, t)
}

func (h *CategoryHandler) DeleteProductType(c *gin.Context) {
	if err := h.uc.DeleteProductType(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Success(c, gin.H{"deleted": true})
}

func (h *CategoryHandler) ListRequests(c *gin.Context) {
	var status *model.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := model.RequestStatus(raw)
		status = &s
	}
	requests, err := h.uc.ListRequests(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, requests)
}

func (h *CategoryHandler) SubmitRequest(c *gin.Context) {
	var input dto.SubmitRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	req, err := h.uc.SubmitRequest(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

func (h *CategoryHandler) ReviewRequest(c *gin.Context) {
	var input dto.ReviewRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	req, err := h.uc.ReviewRequest(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c.Request.Context())
	response.Success(c, req)
}

func (h *CategoryHandler) invalidate(ctx context.Context) {
	if h.respCache != nil {
		h.respCache.InvalidateByTags(ctx, []string{CacheTag})
	}
}
