package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurniadi/wms-vas-service/internal/inventory"
	"github.com/kurniadi/wms-vas-service/internal/inventory/dto"
	"github.com/kurniadi/wms-vas-service/internal/model"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger *zap.Logger
}

func NewInventoryHandler(uc inventory.UseCase, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(r *gin.RouterGroup) {
	r.GET("/inventory", h.ListLots)
	r.GET("/inventory/:id", h.GetLot)
	r.GET("/inventory/:id/adjustments", h.ListAdjustments)
	r.POST("/inventory/adjust", h.AdjustLot)
}

func (h *InventoryHandler) GetLot(c *gin.Context) {
	lot, err := h.uc.GetLot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *InventoryHandler) ListLots(c *gin.Context) {
	var query struct {
		PalletID   string `form:"pallet_id"`
		MaterialID string `form:"material_id"`
		AccountID  string `form:"account_id"`
		Status     string `form:"status"`
		Page       int    `form:"page,default=1"`
		PageSize   int    `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lots, total, err := h.uc.ListLots(c.Request.Context(), &dto.LotFilters{
		PalletID:   query.PalletID,
		MaterialID: query.MaterialID,
		AccountID:  query.AccountID,
		Status:     query.Status,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lots, "total": total})
}

func (h *InventoryHandler) ListAdjustments(c *gin.Context) {
	var query struct {
		Page     int `form:"page,default=1"`
		PageSize int `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, total, err := h.uc.ListAdjustments(c.Request.Context(), &dto.AdjustmentFilters{
		InventoryID: c.Param("id"),
		Page:        query.Page,
		PageSize:    query.PageSize,
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *InventoryHandler) AdjustLot(c *gin.Context) {
	var input dto.AdjustLotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lot, err := h.uc.AdjustLot(c.Request.Context(), &input)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *InventoryHandler) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("inventory request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrLotNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrInvalidReason),
		errors.Is(err, model.ErrZeroDelta):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInsufficientQuantity),
		errors.Is(err, model.ErrInvalidWeight),
		errors.Is(err, model.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
