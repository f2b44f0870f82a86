package jobs

import (
	"context"
	"time"

	"atelier-backend/internal/logger"
)

// ScanOverdueInvoices reports invoices still out with the customer past their
// return date. The lifecycle has no overdue state, so the scan never writes
// status; it feeds the ops log for follow-up and penalty decisions.
func (jr *JobRunner) ScanOverdueInvoices() {
	jr.runWithRecovery("ScanOverdueInvoices", func() {
		ctx := context.Background()
		today := time.Now().UTC().Format("2006-01-02")

		overdue, err := jr.store.Invoices().ListOverdue(ctx, today)
		if err != nil {
			logger.Error("Failed to scan overdue invoices", "error", err)
			return
		}

		perTenant := make(map[int32]int)
		for _, inv := range overdue {
			perTenant[inv.TenantID]++
			returnDate := ""
			if inv.ReturnDate != nil {
				returnDate = *inv.ReturnDate
			}
			logger.Debug("Invoice overdue",
				"tenant_id", inv.TenantID,
				"invoice_id", inv.ID,
				"invoice_number", inv.InvoiceNumber,
				"customer_name", inv.CustomerName,
				"return_date", returnDate)
		}

		logger.Info("Overdue scan finished", "total", len(overdue), "tenants", len(perTenant))
		for tenantID, count := range perTenant {
			logger.Info("Tenant overdue summary", "tenant_id", tenantID, "count", count)
		}
	})
}
