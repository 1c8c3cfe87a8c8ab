package handler

import (
	"net/http"

	"pharmaproc/internal/service"
	"pharmaproc/pkg/pagination"
	"pharmaproc/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	orderService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(orderService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/purchase-orders")
	{
		orders.GET("", h.ListPurchaseOrders)
		orders.POST("/local", h.CreateLocalPurchaseOrder)
		orders.POST("/import", h.CreateImportPurchaseOrder)
		orders.GET("/:id", h.GetPurchaseOrder)
		orders.POST("/:id/start-inspection", h.StartInspection)
	}
}

// ListPurchaseOrders returns orders, newest first
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Param        skip           query     int     false  "Rows to skip (default: 0)"
// @Param        limit          query     int     false  "Page size (default: 100, max: 500)"
// @Param        supplier_type  query     string  false  "Filter by type: local, import"
// @Param        status         query     string  false  "Filter by status: pending, qc_inspection, completed, partially_rejected"
// @Param        supplier_id    query     string  false  "Filter by supplier"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/procurement/purchase-orders [get]
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	page, err := pagination.Parse(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	orders, total, err := h.orderService.GetPurchaseOrders(c.Request.Context(), service.PurchaseOrderListQuery{
		SupplierType: c.Query("supplier_type"),
		Status:       c.Query("status"),
		SupplierID:   c.Query("supplier_id"),
		Skip:         page.Skip,
		Limit:        page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, orders, page.Skip, page.Limit, total))
}

// CreateLocalPurchaseOrder creates an order against a local supplier
// @Summary      Create local purchase order
// @Description  Assigns a PO number, computes line totals and applies the optional tax percentage.
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateLocalPurchaseOrderRequest  true  "Order payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/purchase-orders/local [post]
func (h *PurchaseOrderHandler) CreateLocalPurchaseOrder(c *gin.Context) {
	var req service.CreateLocalPurchaseOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateLocalPurchaseOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// CreateImportPurchaseOrder creates an order against an import supplier
// @Summary      Create import purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateImportPurchaseOrderRequest  true  "Order payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/purchase-orders/import [post]
func (h *PurchaseOrderHandler) CreateImportPurchaseOrder(c *gin.Context) {
	var req service.CreateImportPurchaseOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateImportPurchaseOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// GetPurchaseOrder returns one order with its supplier and items
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Produce      json
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	order, err := h.orderService.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// StartInspection moves a pending order into QC inspection
// @Summary      Start QC inspection
// @Tags         purchase-orders
// @Produce      json
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/purchase-orders/{id}/start-inspection [post]
func (h *PurchaseOrderHandler) StartInspection(c *gin.Context) {
	order, err := h.orderService.StartInspection(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}
