package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"pharmaproc/internal/handler"
	"pharmaproc/internal/metrics"
	"pharmaproc/internal/middleware"
	"pharmaproc/internal/service"
	"pharmaproc/internal/websocket"
)

const ServiceName = "pharmaproc"

// Services is the set of business services exposed over HTTP.
type Services struct {
	Suppliers      service.SupplierService
	Products       service.ProductService
	PurchaseOrders service.PurchaseOrderService
	QCReports      service.QCReportService
	Receipts       service.ReceiptService
}

type RouterOptions struct {
	APIPrefix   string
	CORSOrigins []string
	Production  bool
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Hub         *websocket.Hub
	Services    Services
}

// NewRouter builds the gin engine with middleware, infrastructure routes and
// the procurement API under opts.APIPrefix.
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handler.RegisterValidation()

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Secure(opts.Production),
		middleware.CORS(opts.CORSOrigins),
	)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": ServiceName, "api": opts.APIPrefix, "docs": "/swagger/index.html"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if opts.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(opts.Hub, c)
		})
	}

	api := router.Group(opts.APIPrefix)
	handler.NewSupplierHandler(opts.Services.Suppliers).RegisterRoutes(api)
	handler.NewProductHandler(opts.Services.Products).RegisterRoutes(api)
	handler.NewPurchaseOrderHandler(opts.Services.PurchaseOrders).RegisterRoutes(api)
	handler.NewQCReportHandler(opts.Services.QCReports).RegisterRoutes(api)
	handler.NewReceiptHandler(opts.Services.Receipts).RegisterRoutes(api)

	return router
}
