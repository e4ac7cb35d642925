package handler

import (
	"context"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/shopledger/backend/internal/application/ledger"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
)

// LedgerService is the application service behind LedgerHandler
type LedgerService interface {
	GetProductLedger(ctx context.Context, q ledgerapp.ProductLedgerQuery) (*ledgerapp.ProductLedgerResult, error)
	ExportProductLedger(ctx context.Context, q ledgerapp.ProductLedgerQuery) (*ledgerapp.LedgerExport, error)
	ListReturnPolicies() []ledgerapp.ReturnPolicyInfo
}

// LedgerHandler serves product ledgers
type LedgerHandler struct {
	BaseHandler
	service LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RegisterRoutes mounts the ledger routes under rg
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ledger")
	g.GET("", h.GetLedgerByQuery)
	g.GET("/export", h.ExportLedgerByQuery)
	g.GET("/return-policies", h.ListReturnPolicies)
	g.GET("/products/:name", h.GetProductLedger)
	g.GET("/products/:name/export", h.ExportProductLedger)
}

// GetProductLedger serves the ledger of the product named in the path
func (h *LedgerHandler) GetProductLedger(c *gin.Context) {
	var req ProductLedgerRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respondLedger(c, c.Param("name"), req.SupplierID, req.ReturnPolicy)
}

// GetLedgerByQuery serves the ledger of the product named by the product query parameter
func (h *LedgerHandler) GetLedgerByQuery(c *gin.Context) {
	var req ProductLedgerQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respondLedger(c, req.Product, req.SupplierID, req.ReturnPolicy)
}

// ExportProductLedger serves the ledger as an xlsx attachment
func (h *LedgerHandler) ExportProductLedger(c *gin.Context) {
	var req ProductLedgerRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respondExport(c, c.Param("name"), req.SupplierID, req.ReturnPolicy)
}

// ExportLedgerByQuery is ExportProductLedger with the product in the query
func (h *LedgerHandler) ExportLedgerByQuery(c *gin.Context) {
	var req ProductLedgerQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respondExport(c, req.Product, req.SupplierID, req.ReturnPolicy)
}

// ListReturnPolicies lists the registered return policies and the default
func (h *LedgerHandler) ListReturnPolicies(c *gin.Context) {
	h.Success(c, h.service.ListReturnPolicies())
}

func (h *LedgerHandler) respondLedger(c *gin.Context, product, supplierID, policy string) {
	result, err := h.service.GetProductLedger(c.Request.Context(), buildQuery(product, supplierID, policy))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductLedgerResponse(result.Ledger))
}

func (h *LedgerHandler) respondExport(c *gin.Context, product, supplierID, policy string) {
	export, err := h.service.ExportProductLedger(c.Request.Context(), buildQuery(product, supplierID, policy))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.FileName,
	}))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}

// buildQuery assumes supplierID passed the uuid binding check
func buildQuery(product, supplierID, policy string) ledgerapp.ProductLedgerQuery {
	q := ledgerapp.ProductLedgerQuery{
		ProductName:  product,
		ReturnPolicy: policy,
	}
	if supplierID != "" {
		if id, err := uuid.Parse(supplierID); err == nil {
			q.SupplierID = &id
		}
	}
	return q
}
