package handler

import (
	"net/http"

	"pharmaproc/internal/service"
	"pharmaproc/pkg/pagination"
	"pharmaproc/pkg/response"

	"github.com/gin-gonic/gin"
)

type QCReportHandler struct {
	qcService service.QCReportService
}

func NewQCReportHandler(qcService service.QCReportService) *QCReportHandler {
	return &QCReportHandler{qcService: qcService}
}

func (h *QCReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/qc-reports")
	{
		reports.GET("", h.ListQCReports)
		reports.POST("", h.CreateQCReport)
		reports.GET("/by-po/:po_id", h.GetQCReportByPurchaseOrder)
		reports.GET("/:id", h.GetQCReport)
		reports.PUT("/:id", h.UpdateQCReport)
	}
}

// ListQCReports returns QC reports, newest first
// @Summary      List QC reports
// @Tags         qc-reports
// @Produce      json
// @Param        skip   query     int  false  "Rows to skip (default: 0)"
// @Param        limit  query     int  false  "Page size (default: 100, max: 500)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/procurement/qc-reports [get]
func (h *QCReportHandler) ListQCReports(c *gin.Context) {
	page, err := pagination.Parse(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	reports, total, err := h.qcService.GetQCReports(c.Request.Context(), service.QCReportListQuery{
		Skip:  page.Skip,
		Limit: page.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, reports, page.Skip, page.Limit, total))
}

// CreateQCReport records the inspection outcome of a purchase order
// @Summary      Create QC report
// @Description  One report per order. Settles the order as completed or partially_rejected.
// @Tags         qc-reports
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateQCReportRequest  true  "QC payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/procurement/qc-reports [post]
func (h *QCReportHandler) CreateQCReport(c *gin.Context) {
	var req service.CreateQCReportRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.qcService.CreateQCReport(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}

// UpdateQCReport revises a QC report and re-settles its order
// @Summary      Update QC report
// @Tags         qc-reports
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "QC report ID"
// @Param        payload  body  service.UpdateQCReportRequest  true  "Fields to change; items replaces every line"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/qc-reports/{id} [put]
func (h *QCReportHandler) UpdateQCReport(c *gin.Context) {
	var req service.UpdateQCReportRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.qcService.UpdateQCReport(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetQCReport returns one QC report with its lines
// @Summary      Get QC report
// @Tags         qc-reports
// @Produce      json
// @Param        id   path      string  true  "QC report ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/qc-reports/{id} [get]
func (h *QCReportHandler) GetQCReport(c *gin.Context) {
	report, err := h.qcService.GetQCReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetQCReportByPurchaseOrder returns the report recorded for an order
// @Summary      Get QC report by purchase order
// @Tags         qc-reports
// @Produce      json
// @Param        po_id  path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/procurement/qc-reports/by-po/{po_id} [get]
func (h *QCReportHandler) GetQCReportByPurchaseOrder(c *gin.Context) {
	report, err := h.qcService.GetQCReportByPurchaseOrder(c.Request.Context(), c.Param("po_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
