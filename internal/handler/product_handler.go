package handler

import (
	"net/http"

	"pharmaproc/internal/service"
	"pharmaproc/pkg/pagination"
	"pharmaproc/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

// ListProducts returns the product catalogue
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        skip           query     int     false  "Rows to skip (default: 0)"
// @Param        limit          query     int     false  "Page size (default: 100, max: 500)"
// @Param        name           query     string  false  "Case-insensitive name search"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/procurement/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, err := pagination.Parse(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	products, total, err := h.productService.GetProducts(c.Request.Context(), service.ProductListQuery{
		Name:  c.Query("name"),
		Skip:  page.Skip,
		Limit: page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, products, page.Skip, page.Limit, total))
}

// CreateProduct adds a product to the catalogue
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateProductRequest  true  "Product payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// GetProduct returns one product
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateProduct patches the provided fields
// @Summary      Update product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Product ID"
// @Param        payload  body  service.UpdateProductRequest  true  "Fields to change"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct removes a product no order line references
// @Summary      Delete product
// @Tags         products
// @Param        id   path  string  true  "Product ID"
// @Success      204
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
