package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"phone_sales/internal/monitoring"
	"phone_sales/internal/sales"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// InitRoutes registers the sales endpoints, /ping and /metrics on the given Gin engine.
func InitRoutes(e *gin.Engine, salesService *sales.Service, logger *zap.Logger) {
	salesHandler := NewSalesHandler(salesService, logger)

	e.Use(requestLogger(logger))

	e.POST("/sales/online", salesHandler.handleCreateSale(sales.ChannelOnline))
	e.POST("/sales/local", salesHandler.handleCreateSale(sales.ChannelLocal))
	e.GET("/sales", salesHandler.handleListSales)
	e.GET("/sales/:dni", salesHandler.handleGetSale)
	e.PATCH("/sales/:dni", salesHandler.handleUpdateSale)
	e.DELETE("/sales/:dni", salesHandler.handleDeleteSale)

	e.GET("/metrics", gin.WrapH(monitoring.Handler()))

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}

// requestLogger tags every request with an id (kept from X-Request-ID when sent) and logs it when done.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		logger.Info("request handled",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
