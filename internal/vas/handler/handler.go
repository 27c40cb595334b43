package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurniadi/wms-vas-service/internal/model"
	"github.com/kurniadi/wms-vas-service/internal/vas"
	"github.com/kurniadi/wms-vas-service/internal/vas/dto"
)

type VASHandler struct {
	uc     vas.UseCase
	logger *zap.Logger
}

func NewVASHandler(uc vas.UseCase, log *zap.Logger) *VASHandler {
	return &VASHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *VASHandler) Register(r *gin.RouterGroup) {
	r.POST("/vas-transactions", h.CreateTransaction)
	r.GET("/vas-transactions", h.ListTransactions)
	r.GET("/vas-transactions/:id", h.GetTransaction)
	r.GET("/vas-transactions/:id/amendments", h.ListAmendments)
	r.POST("/vas-transactions/:id/complete", h.CompleteTransaction)
	r.POST("/vas-transactions/:id/amend-line", h.AmendLine)
	r.POST("/vas-transactions/:id/void", h.VoidTransaction)
}

func (h *VASHandler) CreateTransaction(c *gin.Context) {
	var input dto.CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.uc.CreateTransaction(c.Request.Context(), &input)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *VASHandler) GetTransaction(c *gin.Context) {
	txn, err := h.uc.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *VASHandler) ListTransactions(c *gin.Context) {
	var query struct {
		AccountID     string `form:"account_id"`
		ServiceType   string `form:"service_type"`
		Status        string `form:"status"`
		IncludeVoided bool   `form:"include_voided"`
		Page          int    `form:"page,default=1"`
		PageSize      int    `form:"page_size,default=50"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txns, total, err := h.uc.ListTransactions(c.Request.Context(), &dto.TransactionFilters{
		AccountID:     query.AccountID,
		ServiceType:   query.ServiceType,
		Status:        query.Status,
		IncludeVoided: query.IncludeVoided,
		Page:          query.Page,
		PageSize:      query.PageSize,
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": txns, "total": total})
}

func (h *VASHandler) ListAmendments(c *gin.Context) {
	items, err := h.uc.ListAmendments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *VASHandler) CompleteTransaction(c *gin.Context) {
	txn, err := h.uc.CompleteTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *VASHandler) AmendLine(c *gin.Context) {
	var input dto.AmendLineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.TransactionID = c.Param("id")

	txn, err := h.uc.AmendLine(c.Request.Context(), &input)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *VASHandler) VoidTransaction(c *gin.Context) {
	var input dto.VoidTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.TransactionID = c.Param("id")

	txn, err := h.uc.VoidTransaction(c.Request.Context(), &input)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *VASHandler) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("vas request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrTransactionNotFound),
		errors.Is(err, model.ErrLineNotFound),
		errors.Is(err, model.ErrMaterialNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrEmptyReason),
		errors.Is(err, model.ErrZeroDelta),
		errors.Is(err, model.ErrNegativeValue),
		errors.Is(err, model.ErrInvalidService),
		errors.Is(err, model.ErrPalletRequired),
		errors.Is(err, model.ErrLineNotPermitted):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAlreadyVoided),
		errors.Is(err, model.ErrInsufficientInventory),
		errors.Is(err, model.ErrInsufficientQuantity),
		errors.Is(err, model.ErrInvalidWeight),
		errors.Is(err, model.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
