package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/resolver"
	"warehouse-service/internal/scanner"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"
	"warehouse-service/internal/workflow"
)

// Handler contains HTTP handlers
type Handler struct {
	store    *store.Store
	sessions *workflow.Manager
	events   *broker.EventPublisher
}

// NewHandler creates a new HTTP handler
func NewHandler(st *store.Store, sessions *workflow.Manager, events *broker.EventPublisher) *Handler {
	return &Handler{
		store:    st,
		sessions: sessions,
		events:   events,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/items", h.listItems)
		v1.POST("/items", h.createItem)
		v1.GET("/items/categories", h.listCategories)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)

		v1.GET("/alerts", h.listAlerts)
		v1.GET("/activity", h.listActivity)
		v1.GET("/dashboard", h.dashboard)

		v1.POST("/scan/stock-out", h.startStockOut)
		v1.POST("/scan/receive-order", h.startReceiveOrder)
		v1.GET("/scan/sessions/:id", h.getSession)
		v1.POST("/scan/sessions/:id/decode", h.feedDecode)
		v1.POST("/scan/sessions/:id/quantity", h.selectQuantity)
		v1.POST("/scan/sessions/:id/confirm", h.confirmCommit)
		v1.POST("/scan/sessions/:id/rescan", h.rescan)
		v1.POST("/scan/sessions/:id/cancel", h.cancelSession)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listItems handles item listing with search and filters
func (h *Handler) listItems(c *gin.Context) {
	filter := store.ItemFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   models.ItemStatus(c.Query("status")),
	}

	items := h.store.ListItems(filter)
	c.JSON(http.StatusOK, gin.H{"items": toItemViews(items)})
}

// CreateItemRequest represents a request to add an item
type CreateItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity" binding:"min=0"`
	MinStock int     `json:"min_stock" binding:"min=0"`
	Price    float64 `json:"price" binding:"min=0"`
}

// createItem handles adding a new item to the catalog
func (h *Handler) createItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.store.CreateItem(req.Name, req.Category, req.Quantity, req.MinStock, req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to create item",
			"details": err.Error(),
		})
		return
	}

	util.ItemsCreatedTotal.Inc()
	h.events.PublishItemCreated(c.Request.Context(), item)

	c.JSON(http.StatusCreated, toItemView(item))
}

// listCategories returns the distinct item categories
func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.store.Categories()})
}

// listOrders handles order listing with search, filter and per-status counts
func (h *Handler) listOrders(c *gin.Context) {
	filter := store.OrderFilter{
		Search: c.Query("search"),
		Status: models.OrderStatus(c.Query("status")),
	}

	orders := h.store.ListOrders(filter)
	c.JSON(http.StatusOK, gin.H{
		"orders": toOrderViews(orders),
		"counts": h.store.OrderStatusCounts(),
	})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.store.GetOrderByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// listAlerts returns the alert set derived from current stock levels
func (h *Handler) listAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alerts": toAlertViews(h.store.Alerts())})
}

// listActivity returns the recent activity feed
func (h *Handler) listActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	c.JSON(http.StatusOK, gin.H{"activity": h.store.RecentActivity(limit)})
}

// dashboard returns the headline counts plus the items needing attention
func (h *Handler) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"summary":   h.store.DashboardSummary(),
		"attention": toItemViews(h.store.AttentionItems()),
	})
}

// startStockOut opens a stock-out scan session
func (h *Handler) startStockOut(c *gin.Context) {
	s := h.sessions.StartStockOut(c.Request.Context())
	c.JSON(http.StatusCreated, toSessionView(s.View()))
}

// startReceiveOrder opens a receive-order scan session
func (h *Handler) startReceiveOrder(c *gin.Context) {
	s := h.sessions.StartReceiveOrder(c.Request.Context())
	c.JSON(http.StatusCreated, toSessionView(s.View()))
}

// getSession returns the current session state
func (h *Handler) getSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, toSessionView(s.View()))
}

// DecodeRequest carries a decoded scan payload from a device
type DecodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// feedDecode ingests a decoded payload into a scanning session
func (h *Handler) feedDecode(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := s.FeedDecode(req.Code); err != nil {
		c.JSON(statusForWorkflowError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSessionView(s.View()))
}

// QuantityRequest carries the selected stock-out quantity
type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// selectQuantity sets the stock-out quantity on a resolved session
func (h *Handler) selectQuantity(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := s.SelectQuantity(req.Quantity); err != nil {
		c.JSON(statusForWorkflowError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSessionView(s.View()))
}

// confirmCommit commits the resolved action
func (h *Handler) confirmCommit(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := s.Confirm(c.Request.Context()); err != nil {
		c.JSON(statusForWorkflowError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSessionView(s.View()))
}

// rescan discards the resolved match and reopens scanning
func (h *Handler) rescan(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := s.Rescan(c.Request.Context()); err != nil {
		c.JSON(statusForWorkflowError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSessionView(s.View()))
}

// cancelSession tears a session down
func (h *Handler) cancelSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := s.Cancel(); err != nil {
		c.JSON(statusForWorkflowError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSessionView(s.View()))
}

// statusForWorkflowError maps workflow errors to HTTP statuses.
func statusForWorkflowError(err error) int {
	switch {
	case errors.Is(err, workflow.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrInvalidState), errors.Is(err, scanner.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, store.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, resolver.ErrNoCandidates):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
