package main

import (
	"fmt"
	"log"

	"billora/internal/config"
	"billora/internal/email/noop"
	"billora/internal/email/ses"
	"billora/internal/handler"
	"billora/internal/port"
	htmlrender "billora/internal/render/html"
	"billora/internal/repository/postgres"
	"billora/internal/router"
	"billora/internal/service"
	s3storage "billora/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	txManager := postgres.NewTxManager(db)
	clientRepo := postgres.NewClientRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	itemRepo := postgres.NewInvoiceItemRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)

	// Initialize storage
	store, err := s3storage.NewObjectStorage(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// Initialize email
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender()
	}

	renderer, err := htmlrender.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	company := cfg.Company.Settings()
	taxMode := cfg.Tax.TaxMode()

	// Initialize services
	fileSvc := service.NewFileService(store, &cfg.S3)
	reconciler := service.NewReconciler(invoiceRepo, scheduleRepo, paymentRepo)
	clientSvc := service.NewClientService(clientRepo)
	invoiceSvc := service.NewInvoiceService(txManager, clientRepo, invoiceRepo, itemRepo,
		scheduleRepo, paymentRepo, fileSvc, reconciler, renderer, emailSender, company, taxMode)
	paymentSvc := service.NewPaymentService(txManager, scheduleRepo, paymentRepo, fileSvc, reconciler)
	reportSvc := service.NewReportService(invoiceRepo, clientRepo, itemRepo, scheduleRepo, paymentRepo)

	// Initialize handlers
	clientH := handler.NewClientHandler(clientSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	paymentH := handler.NewPaymentHandler(paymentSvc, fileSvc)
	fileH := handler.NewFileHandler(fileSvc)
	reportH := handler.NewReportHandler(reportSvc)
	statsH := handler.NewStatsHandler(invoiceSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, clientH, invoiceH, paymentH, fileH, reportH, statsH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
