package router

import (
	"github.com/gin-gonic/gin"

	"billora/internal/handler"
	"billora/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsOrigins []string,
	clientH *handler.ClientHandler,
	invoiceH *handler.InvoiceHandler,
	paymentH *handler.PaymentHandler,
	fileH *handler.FileHandler,
	reportH *handler.ReportHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	clients := v1.Group("/clients")
	clients.POST("", clientH.Create)
	clients.GET("", clientH.List)
	clients.GET("/:id", clientH.GetByID)
	clients.PUT("/:id", clientH.Update)
	clients.DELETE("/:id", clientH.Delete)

	invoices := v1.Group("/invoices")
	invoices.GET("/next-number", invoiceH.NextNumber)
	invoices.POST("", invoiceH.Create)
	invoices.GET("", invoiceH.List)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.PUT("/:id", invoiceH.Update)
	invoices.DELETE("/:id", invoiceH.Delete)
	invoices.POST("/:id/duplicate", invoiceH.Duplicate)
	invoices.PATCH("/:id/status", invoiceH.UpdateStatus)
	invoices.POST("/:id/send", invoiceH.Send)

	schedules := v1.Group("/schedules")
	schedules.POST("/:id/payments", paymentH.Record)
	schedules.GET("/:id/remaining", paymentH.Remaining)

	payments := v1.Group("/payments")
	payments.GET("", paymentH.List)
	payments.GET("/:id", paymentH.GetByID)
	payments.PUT("/:id", paymentH.Update)
	payments.DELETE("/:id", paymentH.Delete)
	payments.GET("/:id/receipt", paymentH.ReceiptURL)

	files := v1.Group("/files")
	files.POST("", fileH.Upload)
	files.GET("/url", fileH.PresignURL)

	reports := v1.Group("/reports")
	reports.GET("/invoices.csv", reportH.ExportCSV)
	reports.GET("/invoices.xlsx", reportH.ExportExcel)

	v1.GET("/stats", statsH.Get)

	return r
}
