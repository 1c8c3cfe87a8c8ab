package handler

import (
	"net/http"

	"pharmaproc/internal/service"
	"pharmaproc/pkg/pagination"
	"pharmaproc/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReceiptHandler struct {
	receiptService service.ReceiptService
}

func NewReceiptHandler(receiptService service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

func (h *ReceiptHandler) RegisterRoutes(router *gin.RouterGroup) {
	receipts := router.Group("/receipts")
	{
		receipts.GET("", h.ListReceipts)
		receipts.POST("", h.CreateReceipt)
		receipts.GET("/:id", h.GetReceipt)
	}
}

// ListReceipts returns receipts, newest first
// @Summary      List receipts
// @Tags         receipts
// @Produce      json
// @Param        skip               query     int     false  "Rows to skip (default: 0)"
// @Param        limit              query     int     false  "Page size (default: 100, max: 500)"
// @Param        receipt_type       query     string  false  "Filter by type: accepted, rejected"
// @Param        purchase_order_id  query     string  false  "Filter by purchase order"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/procurement/receipts [get]
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	page, err := pagination.Parse(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	receipts, total, err := h.receiptService.GetReceipts(c.Request.Context(), service.ReceiptListQuery{
		ReceiptType:     c.Query("receipt_type"),
		PurchaseOrderID: c.Query("purchase_order_id"),
		Skip:            page.Skip,
		Limit:           page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, receipts, page.Skip, page.Limit, total))
}

// CreateReceipt issues an accepted or rejected goods receipt from a QC report
// @Summary      Create receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateReceiptRequest  true  "Receipt payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/receipts [post]
func (h *ReceiptHandler) CreateReceipt(c *gin.Context) {
	var req service.CreateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, receipt))
}

// GetReceipt returns one receipt
// @Summary      Get receipt
// @Tags         receipts
// @Produce      json
// @Param        id   path      string  true  "Receipt ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, receipt))
}
