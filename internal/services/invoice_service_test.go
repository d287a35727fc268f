package services_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"servicehub/internal/domain"
	"servicehub/internal/services"
)

func TestInvoices_DerivedFromCompleted(t *testing.T) {
	e := newEnv(t)

	invs, err := e.invoices.List(services.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, invs, 2)

	inv := invs[1]
	assert.Equal(t, "inv-apt-3", inv.ID)
	assert.Equal(t, "pi_apt-3", inv.PaymentRef)
	assert.Equal(t, 45.0, inv.Amount)
	assert.Equal(t, 50.0, inv.GrossAmount)
	assert.Equal(t, domain.PaymentPaid, inv.PaymentStatus)
	assert.Equal(t, "2024-01-20T00:00:00Z", inv.PaidAt)

	assert.Equal(t, services.InvoiceTotals{Count: 2, Gross: 125, Commission: 12.5, Earnings: 112.5}, services.TotalsOf(invs))
}

func TestInvoices_Filters(t *testing.T) {
	e := newEnv(t)

	mine, err := e.invoices.List(services.InvoiceFilter{ProviderID: "provider-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "inv-apt-3", mine[0].ID)

	byID, err := e.invoices.List(services.InvoiceFilter{Q: "INV-APT-4"})
	require.NoError(t, err)
	require.Len(t, byID, 1)

	byClient, err := e.invoices.List(services.InvoiceFilter{Q: "john"})
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, "John Doe", byClient[0].ClientName)

	refunded, err := e.invoices.List(services.InvoiceFilter{Status: domain.PaymentRefunded})
	require.NoError(t, err)
	assert.Empty(t, refunded)

	_, err = e.refunds.Process("refund-2", true, "")
	require.NoError(t, err)
	refunded, err = e.invoices.List(services.InvoiceFilter{Status: domain.PaymentRefunded})
	require.NoError(t, err)
	require.Len(t, refunded, 1)
	assert.Equal(t, "inv-apt-4", refunded[0].ID)
}

func TestWriteXLSX(t *testing.T) {
	e := newEnv(t)
	invs, err := e.invoices.List(services.InvoiceFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, services.WriteXLSX(&buf, invs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, "Invoice", rows[0][0])
	assert.Equal(t, "inv-apt-4", rows[1][0])
	assert.Equal(t, "inv-apt-3", rows[2][0])
	assert.Equal(t, "Total", rows[len(rows)-1][0])
}
