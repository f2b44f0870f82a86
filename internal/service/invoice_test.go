package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTenant() *domain.TenantHandle {
	return &domain.TenantHandle{TenantID: 1, TenantName: "Maison Test", ActorID: 7}
}

func seedRentalItem(t *testing.T, f *fakeStore) int32 {
	t.Helper()
	item := &domain.Item{TenantID: 1, Code: "GOWN-01", Name: "Evening gown", ForRent: true, ForSale: true}
	require.NoError(t, fakeItems{f}.Create(context.Background(), item))
	return item.ID
}

func strptr(s string) *string { return &s }

func rentalDraft(itemID int32, collection, ret string) InvoiceDraft {
	return InvoiceDraft{
		ItemID:         itemID,
		CustomerName:   "Ada Customer",
		CustomerPhone:  "555-0101",
		OperationType:  domain.OperationTypeRent,
		TotalCents:     100_000,
		DepositCents:   20_000,
		CollectionDate: strptr(collection),
		ReturnDate:     strptr(ret),
	}
}

func TestCreateInvoice_RentalStartsReserved(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusReserved, inv.Status)
	assert.Equal(t, "INV-000001", inv.InvoiceNumber)
	assert.Equal(t, domain.PaymentStatusPartial, inv.PaymentStatus)

	history, err := fakeHistory{f}.ListByInvoice(ctx, 1, inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, domain.InvoiceStatusReserved, *history[0].ToStatus)
}

func TestCreateInvoice_SaleStartsDraftWithoutWindow(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)

	inv, err := svc.CreateInvoice(context.Background(), testTenant(), InvoiceDraft{
		ItemID:        itemID,
		CustomerName:  "Ada Customer",
		OperationType: domain.OperationTypeSale,
		TotalCents:    50_000,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Nil(t, inv.CollectionDate)
	assert.Nil(t, inv.ReturnDate)
}

func TestCreateInvoice_SaleRejectsWindow(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)

	_, err := svc.CreateInvoice(context.Background(), testTenant(), InvoiceDraft{
		ItemID:         itemID,
		CustomerName:   "Ada Customer",
		OperationType:  domain.OperationTypeSale,
		TotalCents:     50_000,
		CollectionDate: strptr("2024-05-01"),
		ReturnDate:     strptr("2024-05-05"),
	})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateInvoice_OverlapConflict(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	_, err = svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-03", "2024-05-07"))
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, first.ID, conflictErr.Conflicts[0].InvoiceID)
	assert.Equal(t, first.InvoiceNumber, conflictErr.Conflicts[0].InvoiceNumber)
}

func TestCreateInvoice_TouchingWindowsDoNotConflict(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	// Half-open windows: a rental starting on the previous return date fits.
	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-05", "2024-05-08"))
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusReserved, inv.Status)
}

func TestCreateInvoice_CanceledInvoiceFreesWindow(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, testTenant(), first.ID, "customer changed plans")
	require.NoError(t, err)

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-02", "2024-05-06"))
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusReserved, inv.Status)
}

func TestCreateInvoice_EmptyWindowRejected(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)

	_, err := svc.CreateInvoice(context.Background(), testTenant(), rentalDraft(itemID, "2024-05-05", "2024-05-05"))
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestCreateInvoice_ItemNotEligibleForRent(t *testing.T) {
	f := newFakeStore()
	item := &domain.Item{TenantID: 1, Code: "VEIL-01", Name: "Veil", ForSale: true}
	require.NoError(t, fakeItems{f}.Create(context.Background(), item))
	svc := NewInvoiceService(f)

	_, err := svc.CreateInvoice(context.Background(), testTenant(), rentalDraft(item.ID, "2024-05-01", "2024-05-05"))
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestLifecycle_DeliverReturnClose(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	delivered, err := svc.Deliver(ctx, testTenant(), inv.ID, "picked up in store")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOutWithCustomer, delivered.Status)
	assert.NotNil(t, delivered.DeliveredAt)

	returned, err := svc.ReturnItem(ctx, testTenant(), inv.ID, domain.ReturnConditionGood, "")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusReturned, returned.Invoice.Status)
	assert.False(t, returned.PenaltyRecommended)

	closed, err := svc.Close(ctx, testTenant(), inv.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusClosed, closed.Status)

	history, err := fakeHistory{f}.ListByInvoice(ctx, 1, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4) // create + three transitions
}

func TestReturnItem_DamagedRecommendsPenalty(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)
	_, err = svc.Deliver(ctx, testTenant(), inv.ID, "")
	require.NoError(t, err)

	result, err := svc.ReturnItem(ctx, testTenant(), inv.ID, domain.ReturnConditionDamaged, "torn hem")
	require.NoError(t, err)
	assert.True(t, result.PenaltyRecommended)
	require.NotNil(t, result.Invoice.ReturnCondition)
	assert.Equal(t, domain.ReturnConditionDamaged, *result.Invoice.ReturnCondition)
}

func TestClose_FromReservedIsIllegal(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	_, err = svc.Close(ctx, testTenant(), inv.ID, "")
	var illegal *domain.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, domain.InvoiceStatusReserved, illegal.From)
	assert.Equal(t, domain.EventClose, illegal.Event)

	// Status must be untouched after the rejected event.
	stored, err := fakeInvoices{f}.GetByID(ctx, 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusReserved, stored.Status)
}

func TestCancel_RequiresReason(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, testTenant(), inv.ID, "")
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateInvoice_IdenticalPayloadIsNoOp(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	draft := rentalDraft(itemID, "2024-05-01", "2024-05-05")
	inv, err := svc.CreateInvoice(ctx, testTenant(), draft)
	require.NoError(t, err)

	before, err := fakeHistory{f}.ListByInvoice(ctx, 1, inv.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateInvoice(ctx, testTenant(), inv.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, inv.Status, updated.Status)

	after, err := fakeHistory{f}.ListByInvoice(ctx, 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestUpdateInvoice_OperationTypeImmutable(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	draft := InvoiceDraft{
		ItemID:        itemID,
		CustomerName:  "Ada Customer",
		OperationType: domain.OperationTypeSale,
		TotalCents:    100_000,
	}
	_, err = svc.UpdateInvoice(ctx, testTenant(), inv.ID, draft)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateInvoice_WindowMoveRechecksAvailability(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)
	second, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-10", "2024-05-12"))
	require.NoError(t, err)

	// Moving the second booking onto the first must conflict.
	_, err = svc.UpdateInvoice(ctx, testTenant(), second.ID, rentalDraft(itemID, "2024-05-02", "2024-05-06"))
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, first.ID, conflictErr.Conflicts[0].InvoiceID)

	// Moving it over its own current window is fine: the check excludes self.
	moved, err := svc.UpdateInvoice(ctx, testTenant(), second.ID, rentalDraft(itemID, "2024-05-11", "2024-05-13"))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-11", *moved.CollectionDate)
}

func TestUpdateInvoice_TerminalInvoiceRejected(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, testTenant(), inv.ID, "changed plans")
	require.NoError(t, err)

	_, err = svc.UpdateInvoice(ctx, testTenant(), inv.ID, rentalDraft(itemID, "2024-05-01", "2024-05-06"))
	assert.ErrorIs(t, err, domain.ErrInvoiceTerminal)
}

func TestGetInvoice_DerivesRemainingBalance(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	paymentSvc := NewPaymentService(f)
	ctx := context.Background()

	inv, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	_, err = paymentSvc.PostPayment(ctx, testTenant(), inv.ID, domain.PaymentTypePayment, 30_000, "CASH", "")
	require.NoError(t, err)

	detail, err := invoiceSvc.GetInvoice(ctx, testTenant(), inv.ID)
	require.NoError(t, err)
	// 100000 total - 20000 deposit - 30000 paid
	assert.Equal(t, int64(50_000), detail.Invoice.RemainingCents)
	assert.Len(t, detail.Payments, 1)
	assert.Equal(t, itemID, detail.Item.ID)
}

func TestGetInvoice_UnknownID(t *testing.T) {
	f := newFakeStore()
	svc := NewInvoiceService(f)

	_, err := svc.GetInvoice(context.Background(), testTenant(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceOps_RequireTenant(t *testing.T) {
	f := newFakeStore()
	svc := NewInvoiceService(f)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, nil, InvoiceDraft{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = svc.Deliver(ctx, nil, 1, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = svc.GetInvoice(ctx, nil, 1)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCreateInvoice_ReportsRemainingBalance(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)

	inv, err := svc.CreateInvoice(context.Background(), testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	// 100000 total - 20000 deposit, nothing else posted yet.
	assert.Equal(t, int64(80_000), inv.RemainingCents)
	assert.Equal(t, domain.PaymentStatusPartial, inv.PaymentStatus)
}

func TestListInvoices_DerivesRemainingBalance(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	paymentSvc := NewPaymentService(f)
	ctx := context.Background()

	inv, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)
	_, err = paymentSvc.PostPayment(ctx, testTenant(), inv.ID, domain.PaymentTypePayment, 30_000, "CASH", "")
	require.NoError(t, err)

	invoices, total, err := invoiceSvc.ListInvoices(ctx, testTenant(), domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Equal(t, int32(1), total)
	assert.Equal(t, int64(50_000), invoices[0].RemainingCents)
}

func TestUpdateInvoice_RederivesRemainingBalance(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	paymentSvc := NewPaymentService(f)
	ctx := context.Background()

	inv, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)
	_, err = paymentSvc.PostPayment(ctx, testTenant(), inv.ID, domain.PaymentTypePayment, 30_000, "CASH", "")
	require.NoError(t, err)

	draft := rentalDraft(itemID, "2024-05-01", "2024-05-05")
	draft.TotalCents = 120_000
	updated, err := invoiceSvc.UpdateInvoice(ctx, testTenant(), inv.ID, draft)
	require.NoError(t, err)
	// 120000 total - 20000 deposit - 30000 paid
	assert.Equal(t, int64(70_000), updated.RemainingCents)

	// The no-op path reports the same derived balance.
	same, err := invoiceSvc.UpdateInvoice(ctx, testTenant(), inv.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(70_000), same.RemainingCents)
}

// lockstepStore serializes whole transactions behind one mutex, standing in
// for the item row lock when two creators race on the same window.
type lockstepStore struct {
	mu sync.Mutex
	*fakeStore
}

func (s *lockstepStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.fakeStore)
}

func TestCreateInvoice_ConcurrentCreatorsSingleWinner(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(&lockstepStore{fakeStore: f})
	ctx := context.Background()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		lost++
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	invoices, _, err := fakeInvoices{f}.List(ctx, 1, domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, domain.InvoiceStatusReserved, invoices[0].Status)
}

func TestGetInvoice_RepeatedReadsAreIdentical(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	paymentSvc := NewPaymentService(f)
	ctx := context.Background()

	inv, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)
	_, err = paymentSvc.PostPayment(ctx, testTenant(), inv.ID, domain.PaymentTypePayment, 30_000, "CASH", "")
	require.NoError(t, err)

	first, err := invoiceSvc.GetInvoice(ctx, testTenant(), inv.ID)
	require.NoError(t, err)
	second, err := invoiceSvc.GetInvoice(ctx, testTenant(), inv.ID)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestInvoices_AreTenantScoped(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewInvoiceService(f)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	other := &domain.TenantHandle{TenantID: 2, ActorID: 9}
	_, err = svc.GetInvoice(ctx, other, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
