// Command seed inserts a demo client with one invoice, a three-part payment
// schedule, and a recorded payment. Intended for local development only.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billora/internal/config"
	"billora/internal/domain"
	"billora/internal/repository/postgres"
	"billora/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
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

	ctx := context.Background()
	txManager := postgres.NewTxManager(db)
	clientRepo := postgres.NewClientRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	itemRepo := postgres.NewInvoiceItemRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)

	reconciler := service.NewReconciler(invoiceRepo, scheduleRepo, paymentRepo)
	invoiceSvc := service.NewInvoiceService(txManager, clientRepo, invoiceRepo, itemRepo,
		scheduleRepo, paymentRepo, nil, reconciler, nil, nil,
		cfg.Company.Settings(), cfg.Tax.TaxMode())
	paymentSvc := service.NewPaymentService(txManager, scheduleRepo, paymentRepo, nil, reconciler)

	client := &domain.Client{
		ID:          uuid.New(),
		Name:        "Ada Okafor",
		CompanyName: "Acme Fabrication Ltd",
		Email:       "accounts@acmefab.example",
		Phone:       "+234 801 234 5678",
		Address:     "14 Harbour Road",
		City:        "Lagos",
		Country:     "Nigeria",
	}
	if err := clientRepo.Create(ctx, client); err != nil {
		return err
	}
	log.Printf("seeded client %s", client.ID)

	number, err := invoiceSvc.NextInvoiceNumber(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	thirty := dec("30")
	forty := dec("40")
	inv, err := invoiceSvc.Create(ctx, &service.CreateInvoiceInput{
		InvoiceNumber: number,
		ClientID:      client.ID,
		ProjectName:   "Warehouse refit",
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
		Status:        domain.InvoiceStatusSent,
		TaxRate:       dec("7.5"),
		Items: []service.InvoiceItemInput{
			{Description: "Structural steel supply", Unit: "kg", Quantity: dec("1200"), UnitPrice: dec("4.25"), VATRate: dec("7.5")},
			{Description: "Installation labour", Unit: "hrs", Quantity: dec("160"), UnitPrice: dec("18.00"), VATRate: dec("7.5")},
		},
		Schedules: []service.ScheduleSpecInput{
			{Description: "Mobilization (30%)", Percentage: &thirty, DueDate: now.AddDate(0, 0, 7)},
			{Description: "Delivery (40%)", Percentage: &forty, DueDate: now.AddDate(0, 0, 21)},
			{Description: "Completion (30%)", Percentage: &thirty, DueDate: now.AddDate(0, 0, 30)},
		},
	})
	if err != nil {
		return err
	}
	log.Printf("seeded invoice %s (%s)", inv.ID, inv.InvoiceNumber)

	entries, err := scheduleRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		payment, err := paymentSvc.Record(ctx, &service.RecordPaymentInput{
			ScheduleID:    entries[0].ID,
			Amount:        entries[0].Amount,
			PaymentMethod: "bank_transfer",
			PaymentDate:   now,
			Notes:         "Mobilization payment",
		})
		if err != nil {
			return err
		}
		log.Printf("seeded payment %s for schedule entry %d", payment.ID, entries[0].PaymentNumber)
	}

	return nil
}
