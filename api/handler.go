package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"phone_sales/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

type createSaleRequest struct {
	DNI      json.Number `json:"dni"`
	Date     string      `json:"fecha"`
	Customer string      `json:"cliente"`
	Quantity json.Number `json:"producto_vendido"`
}

type updateSaleRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type saleResponse struct {
	Channel     sales.Channel `json:"canal"`
	Sale        sales.Record  `json:"venta"`
	Description string        `json:"descripcion"`
}

func newSaleResponse(s sales.Sale) saleResponse {
	return saleResponse{
		Channel:     s.Channel,
		Sale:        sales.Encode(s),
		Description: s.String(),
	}
}

// handleCreateSale handles POST /sales/online and POST /sales/local.
func (h *salesHandler) handleCreateSale(channel sales.Channel) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req createSaleRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("failed to bind JSON request", zap.Error(err))
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
			return
		}

		sale, err := h.salesService.CreateSale(ctx.Request.Context(), channel,
			req.DNI.String(), req.Date, req.Customer, req.Quantity.String())
		if err != nil {
			h.respondError(ctx, err)
			return
		}

		ctx.JSON(http.StatusCreated, newSaleResponse(sale))
	}
}

// handleGetSale handles GET /sales/:dni.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.FindSale(ctx.Request.Context(), ctx.Param("dni"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newSaleResponse(sale))
}

// handleListSales handles GET /sales.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	all, err := h.salesService.ListSales(ctx.Request.Context())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	totalPhones := 0
	for _, s := range all {
		totalPhones += s.Quantity
	}
	ctx.JSON(http.StatusOK, gin.H{
		"results": all,
		"metadata": gin.H{
			"quantity":     len(all),
			"total_phones": totalPhones,
		},
	})
}

// handleUpdateSale handles PATCH /sales/:dni with {"field": ..., "value": ...}.
func (h *salesHandler) handleUpdateSale(ctx *gin.Context) {
	var req updateSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Field == "" || len(req.Value) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dni := ctx.Param("dni")
	if err := h.salesService.UpdateSale(ctx.Request.Context(), dni, req.Field, rawValue(req.Value)); err != nil {
		h.respondError(ctx, err)
		return
	}

	sale, err := h.salesService.FindSale(ctx.Request.Context(), dni)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newSaleResponse(sale))
}

// handleDeleteSale handles DELETE /sales/:dni.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	if err := h.salesService.DeleteSale(ctx.Request.Context(), ctx.Param("dni")); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// rawValue unquotes JSON strings and keeps numbers and booleans as written.
func rawValue(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(v))
}

func (h *salesHandler) respondError(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", ctx.GetString(requestIDKey)),
			zap.Error(err),
		)
		ctx.JSON(status, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sales.ErrValidation), errors.Is(err, sales.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, sales.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sales.ErrDuplicateKey):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
