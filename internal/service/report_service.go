package service

import (
	"bytes"
	"context"
	"time"

	"billora/internal/csvexport"
	"billora/internal/domain"
	"billora/internal/port"
	"billora/internal/report"
)

// ReportService produces downloadable exports of the invoice book.
type ReportService interface {
	ExportCSV(ctx context.Context, filter port.InvoiceFilter) ([]byte, error)
	ExportExcel(ctx context.Context, filter port.InvoiceFilter) ([]byte, error)
}

type reportService struct {
	invoiceRepo  port.InvoiceRepository
	clientRepo   port.ClientRepository
	itemRepo     port.InvoiceItemRepository
	scheduleRepo port.ScheduleRepository
	paymentRepo  port.PaymentRepository
}

// NewReportService creates a ReportService.
func NewReportService(
	invoiceRepo port.InvoiceRepository,
	clientRepo port.ClientRepository,
	itemRepo port.InvoiceItemRepository,
	scheduleRepo port.ScheduleRepository,
	paymentRepo port.PaymentRepository,
) ReportService {
	return &reportService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		itemRepo:     itemRepo,
		scheduleRepo: scheduleRepo,
		paymentRepo:  paymentRepo,
	}
}

const exportBatch = 500

// collectViews loads every matching invoice with its client and line items,
// plus schedule entries when the export renders them. Exports page through
// the repository so a large book does not require one unbounded query.
func (s *reportService) collectViews(ctx context.Context, filter port.InvoiceFilter, withSchedules bool) ([]domain.InvoiceView, error) {
	var views []domain.InvoiceView
	clients := map[string]*domain.Client{}
	now := time.Now().UTC()

	for offset := 0; ; offset += exportBatch {
		invoices, _, err := s.invoiceRepo.List(ctx, filter, offset, exportBatch)
		if err != nil {
			return nil, err
		}
		if len(invoices) == 0 {
			break
		}
		for i := range invoices {
			inv := invoices[i]
			client, ok := clients[inv.ClientID.String()]
			if !ok {
				client, err = s.clientRepo.GetByID(ctx, inv.ClientID)
				if err != nil {
					return nil, err
				}
				clients[inv.ClientID.String()] = client
			}
			items, err := s.itemRepo.ListByInvoice(ctx, inv.ID)
			if err != nil {
				return nil, err
			}
			view := domain.InvoiceView{
				Invoice: inv,
				Client:  *client,
				Items:   items,
			}
			if withSchedules {
				view.Schedule, err = s.scheduleRepo.ListByInvoice(ctx, inv.ID)
				if err != nil {
					return nil, err
				}
			}
			view.ApplyOverdue(now)
			views = append(views, view)
		}
		if len(invoices) < exportBatch {
			break
		}
	}
	return views, nil
}

func (s *reportService) ExportCSV(ctx context.Context, filter port.InvoiceFilter) ([]byte, error) {
	views, err := s.collectViews(ctx, filter, false)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}
	if err := w.WriteInvoices(views); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *reportService) ExportExcel(ctx context.Context, filter port.InvoiceFilter) ([]byte, error) {
	views, err := s.collectViews(ctx, filter, true)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := report.WriteExcel(&buf, views); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
