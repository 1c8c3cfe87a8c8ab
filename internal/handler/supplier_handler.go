package handler

import (
	"net/http"

	"pharmaproc/internal/service"
	"pharmaproc/pkg/pagination"
	"pharmaproc/pkg/response"

	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	supplierService service.SupplierService
}

func NewSupplierHandler(supplierService service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	suppliers := router.Group("/suppliers")
	{
		suppliers.GET("", h.ListSuppliers)
		suppliers.POST("", h.CreateSupplier)
		suppliers.GET("/:id", h.GetSupplier)
		suppliers.PUT("/:id", h.UpdateSupplier)
		suppliers.DELETE("/:id", h.DeleteSupplier)
	}
}

// ListSuppliers returns suppliers in creation order
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Param        skip           query     int     false  "Rows to skip (default: 0)"
// @Param        limit          query     int     false  "Page size (default: 100, max: 500)"
// @Param        supplier_type  query     string  false  "Filter by type: local, import"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/procurement/suppliers [get]
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	page, err := pagination.Parse(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	suppliers, total, err := h.supplierService.GetSuppliers(c.Request.Context(), service.SupplierListQuery{
		SupplierType: c.Query("supplier_type"),
		Skip:         page.Skip,
		Limit:        page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, suppliers, page.Skip, page.Limit, total))
}

// CreateSupplier registers a supplier
// @Summary      Create supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateSupplierRequest  true  "Supplier payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/suppliers [post]
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if !bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// GetSupplier returns one supplier
// @Summary      Get supplier
// @Tags         suppliers
// @Produce      json
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/suppliers/{id} [get]
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.supplierService.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// UpdateSupplier patches the provided fields
// @Summary      Update supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Supplier ID"
// @Param        payload  body  service.UpdateSupplierRequest  true  "Fields to change"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/suppliers/{id} [put]
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if !bindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// DeleteSupplier removes a supplier no purchase order references
// @Summary      Delete supplier
// @Tags         suppliers
// @Param        id   path  string  true  "Supplier ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/suppliers/{id} [delete]
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.supplierService.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
