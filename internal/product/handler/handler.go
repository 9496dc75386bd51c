package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/avelia/catalog-service/internal/httpcache"
	"github.com/avelia/catalog-service/internal/model"
	"github.com/avelia/catalog-service/internal/product"
	"github.com/avelia/catalog-service/internal/product/dto"
	"github.com/avelia/catalog-service/pkg/logger"
	"github.com/avelia/catalog-service/pkg/response"
)

// CacheTag groups every cached product listing for bulk invalidation.
const CacheTag = "products"

type ProductHandler struct {
	uc        product.UseCase
	respCache *httpcache.Service
	logger    logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, respCache *httpcache.Service, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:        uc,
		respCache: respCache,
		logger:    log,
	}
}

func (h *ProductHandler) RegisterRoutes(r gin.IRouter, cached gin.HandlerFunc) {
	group := r.Group("/products")
	{
		group.GET("", cached, h.Paginate)
		group.GET("/count", h.Count)
		group.GET("/lookup", h.Get)
		group.GET("/new-arrivals", cached, h.NewArrivals)
		group.GET("/marketed", cached, h.Marketed)
		group.GET("/marketed/count", h.MarketedCount)
		group.POST("/batch", h.Batch)
		group.POST("/stock", h.Stock)
		group.PUT("/:id", h.Update)
		group.PATCH("/:id/marketing", h.Marketing)
		group.DELETE("/:id", h.Delete)
	}
}

func (h *ProductHandler) Count(c *gin.Context) {
	filters := parseFilters(c)
	count, err := h.uc.Count(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("count products failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

func (h *ProductHandler) Paginate(c *gin.Context) {
	criteria := &dto.PaginateCriteria{
		Filters:       *parseFilters(c),
		Limit:         intQuery(c, "limit", 20),
		Page:          intQuery(c, "page", 1),
		Search:        c.Query("search"),
		CategoryID:    c.Query("category_id"),
		SubcategoryID: c.Query("subcategory_id"),
		ProductTypeID: c.Query("product_type_id"),
		SortBy:        dto.SortBy(c.DefaultQuery("sort_by", string(dto.SortByCreatedAt))),
		SortOrder:     dto.SortOrder(c.DefaultQuery("sort_order", string(dto.SortDesc))),
	}
	criteria.MinPrice = decimalQuery(c, "min_price")
	criteria.MaxPrice = decimalQuery(c, "max_price")

	page, err := h.uc.Paginate(c.Request.Context(), criteria)
	if err != nil {
		h.logger.Error("paginate products failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (h *ProductHandler) Get(c *gin.Context) {
	lookup := &dto.Lookup{
		Filters: *parseFilters(c),
		ID:      c.Query("id"),
		SKU:     c.Query("sku"),
		Slug:    c.Query("slug"),
	}

	p, err := h.uc.Get(c.Request.Context(), lookup)
	if err != nil {
		response.Error(c, err)
		return
	}
	if p == nil {
		c.JSON(404, gin.H{"error": "product not found"})
		return
	}
	response.Success(c, p)
}

func (h *ProductHandler) Batch(c *gin.Context) {
	var inputs []dto.CreateProductInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	products, err := h.uc.Batch(c.Request.Context(), inputs)
	if err != nil {
		h.logger.Error("batch create failed", zap.Error(err))
		response.Error(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	response.Created(c, products)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var input dto.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.uc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.logger.Error("update product failed", zap.String("id", c.Param("id")), zap.Error(err))
		response.Error(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	response.Success(c, p)
}

func (h *ProductHandler) Marketing(c *gin.Context) {
	var body struct {
		IsMarketed *bool `json:"is_marketed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.IsMarketed == nil {
		c.JSON(400, gin.H{"error": "is_marketed is required"})
		return
	}

	p, err := h.uc.UpdateMarketingStatus(c.Request.Context(), c.Param("id"), *body.IsMarketed)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	response.Success(c, p)
}

func (h *ProductHandler) MarketedCount(c *gin.Context) {
	count, err := h.uc.GetMarketedCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

func (h *ProductHandler) Stock(c *gin.Context) {
	var updates []dto.StockUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.uc.UpdateStock(c.Request.Context(), updates); err != nil {
		h.logger.Error("stock update failed", zap.Error(err))
		response.Error(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	response.Success(c, gin.H{"updated": len(updates)})
}

func (h *ProductHandler) NewArrivals(c *gin.Context) {
	products, err := h.uc.GetNewArrivals(c.Request.Context(), intQuery(c, "limit", 12))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": products})
}

func (h *ProductHandler) Marketed(c *gin.Context) {
	products, err := h.uc.GetMarketedProducts(c.Request.Context(), intQuery(c, "limit", 10))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": products})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	result, err := h.uc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.invalidate(c.Request.Context())
	response.Success(c, result)
}

func (h *ProductHandler) invalidate(ctx context.Context) {
	if h.respCache != nil {
		h.respCache.InvalidateByTags(ctx, []string{CacheTag})
	}
}

func parseFilters(c *gin.Context) *dto.Filters {
	f := &dto.Filters{
		IsActive:    boolQuery(c, "is_active"),
		IsAvailable: boolQuery(c, "is_available"),
		IsPublished: boolQuery(c, "is_published"),
		IsMarketed:  boolQuery(c, "is_marketed"),
		IsDeleted:   boolQuery(c, "is_deleted"),
	}
	if v := c.Query("verification_status"); v != "" {
		status := model.VerificationStatus(v)
		f.VerificationStatus = &status
	}
	// Listings exclude soft-deleted products unless asked for explicitly.
	if f.IsDeleted == nil {
		live := false
		f.IsDeleted = &live
	}
	return f
}

func boolQuery(c *gin.Context, name string) *bool {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func decimalQuery(c *gin.Context, name string) *decimal.Decimal {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}
