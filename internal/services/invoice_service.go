package services

import (
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
)

type InvoiceService struct {
	Apts *repos.AppointmentRepo
}

func NewInvoiceService(apts *repos.AppointmentRepo) *InvoiceService {
	return &InvoiceService{Apts: apts}
}

// InvoiceFilter narrows the invoice list. Zero values match everything.
type InvoiceFilter struct {
	Q          string // client, provider, service or invoice id
	Status     domain.PaymentStatus
	ProviderID string
}

type InvoiceTotals struct {
	Count      int     `json:"count"`
	Gross      float64 `json:"gross"`
	Commission float64 `json:"commission"`
	Earnings   float64 `json:"earnings"`
}

// InvoiceOf derives the invoice for a completed appointment.
func InvoiceOf(a domain.AppointmentView) domain.Invoice {
	status := domain.PaymentPaid
	if a.PaymentStatus == domain.PaymentRefunded {
		status = domain.PaymentRefunded
	}
	return domain.Invoice{
		ID:               "inv-" + a.ID,
		AppointmentID:    a.ID,
		ProviderID:       a.ProviderID,
		ClientID:         a.ClientID,
		ServiceID:        a.ServiceID,
		Amount:           round2(a.TotalAmount - a.CommissionAmount),
		CommissionAmount: a.CommissionAmount,
		GrossAmount:      a.TotalAmount,
		PaymentStatus:    status,
		PaymentRef:       "pi_" + a.ID,
		CreatedAt:        a.CreatedAt,
		PaidAt:           a.UpdatedAt,
		ClientName:       a.ClientName,
		ProviderName:     a.ProviderName,
		ServiceName:      a.ServiceName,
	}
}

func (s *InvoiceService) List(f InvoiceFilter) ([]domain.Invoice, error) {
	apts, err := s.Apts.List(repos.AppointmentFilter{
		ProviderID: f.ProviderID,
		Statuses:   []domain.AppointmentStatus{domain.StatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(f.Q))
	return lo.FilterMap(apts, func(a domain.AppointmentView, _ int) (domain.Invoice, bool) {
		inv := InvoiceOf(a)
		if f.Status != "" && inv.PaymentStatus != f.Status {
			return inv, false
		}
		if q != "" && !lo.SomeBy([]string{inv.ClientName, inv.ProviderName, inv.ServiceName, inv.ID}, func(v string) bool {
			return strings.Contains(strings.ToLower(v), q)
		}) {
			return inv, false
		}
		return inv, true
	}), nil
}

func TotalsOf(invs []domain.Invoice) InvoiceTotals {
	return InvoiceTotals{
		Count:      len(invs),
		Gross:      round2(lo.SumBy(invs, func(i domain.Invoice) float64 { return i.GrossAmount })),
		Commission: round2(lo.SumBy(invs, func(i domain.Invoice) float64 { return i.CommissionAmount })),
		Earnings:   round2(lo.SumBy(invs, func(i domain.Invoice) float64 { return i.Amount })),
	}
}

var invoiceColumns = []any{
	"Invoice", "Appointment", "Client", "Provider", "Service",
	"Gross", "Commission", "Provider Amount", "Status", "Payment Ref", "Created", "Paid",
}

// WriteXLSX writes invoices as a single-sheet workbook with a totals row.
func WriteXLSX(w io.Writer, invs []domain.Invoice) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &invoiceColumns); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	for i, inv := range invs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			inv.ID, inv.AppointmentID, inv.ClientName, inv.ProviderName, inv.ServiceName,
			inv.GrossAmount, inv.CommissionAmount, inv.Amount, string(inv.PaymentStatus),
			inv.PaymentRef, inv.CreatedAt, inv.PaidAt,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	t := TotalsOf(invs)
	cell, err := excelize.CoordinatesToCellName(1, len(invs)+3)
	if err != nil {
		return err
	}
	totals := []any{"Total", t.Count, "", "", "", t.Gross, t.Commission, t.Earnings}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, len(invs)+3, len(invs)+3, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "L", 18); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
