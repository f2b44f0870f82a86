package service

import (
	"context"
	"testing"

	"atelier-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailability_SymmetricOverlap(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	availabilitySvc := NewAvailabilityService(f)
	ctx := context.Background()

	_, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-03", "2024-05-07"))
	require.NoError(t, err)

	// Overlap is symmetric: a window starting earlier and one starting later
	// both collide with the booked [05-03, 05-07).
	earlier, err := availabilitySvc.Check(ctx, testTenant(), itemID, "2024-05-01", "2024-05-04", 0)
	require.NoError(t, err)
	assert.False(t, earlier.Available)

	later, err := availabilitySvc.Check(ctx, testTenant(), itemID, "2024-05-06", "2024-05-09", 0)
	require.NoError(t, err)
	assert.False(t, later.Available)

	contained, err := availabilitySvc.Check(ctx, testTenant(), itemID, "2024-05-04", "2024-05-05", 0)
	require.NoError(t, err)
	assert.False(t, contained.Available)
}

func TestAvailability_HalfOpenBoundaries(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	availabilitySvc := NewAvailabilityService(f)
	ctx := context.Background()

	_, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	// Ending exactly at the booked collection date is free.
	before, err := availabilitySvc.Check(ctx, testTenant(), itemID, "2024-04-28", "2024-05-01", 0)
	require.NoError(t, err)
	assert.True(t, before.Available)

	// Starting exactly at the booked return date is free.
	after, err := availabilitySvc.Check(ctx, testTenant(), itemID, "2024-05-05", "2024-05-08", 0)
	require.NoError(t, err)
	assert.True(t, after.Available)
}

func TestAvailability_DraftAndTerminalDoNotOccupy(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	availabilitySvc := NewAvailabilityService(f)
	ctx := context.Background()

	inv, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)
	_, err = invoiceSvc.Cancel(ctx, testTenant(), inv.ID, "no longer needed")
	require.NoError(t, err)

	result, err := availabilitySvc.Check(ctx, testTenant(), itemID, "2024-05-02", "2024-05-04", 0)
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.Conflicts)
}

func TestAvailability_ExcludesOwnInvoice(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	invoiceSvc := NewInvoiceService(f)
	availabilitySvc := NewAvailabilityService(f)
	ctx := context.Background()

	inv, err := invoiceSvc.CreateInvoice(ctx, testTenant(), rentalDraft(itemID, "2024-05-01", "2024-05-05"))
	require.NoError(t, err)

	result, err := availabilitySvc.Check(ctx, testTenant(), itemID, "2024-05-02", "2024-05-06", inv.ID)
	require.NoError(t, err)
	assert.True(t, result.Available)
}

func TestAvailability_InvalidWindows(t *testing.T) {
	f := newFakeStore()
	itemID := seedRentalItem(t, f)
	svc := NewAvailabilityService(f)
	ctx := context.Background()

	_, err := svc.Check(ctx, testTenant(), itemID, "2024-05-05", "2024-05-01", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = svc.Check(ctx, testTenant(), itemID, "2024-05-05", "2024-05-05", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	_, err = svc.Check(ctx, testTenant(), itemID, "05/01/2024", "2024-05-05", 0)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAvailability_UnknownItem(t *testing.T) {
	f := newFakeStore()
	svc := NewAvailabilityService(f)

	_, err := svc.Check(context.Background(), testTenant(), 42, "2024-05-01", "2024-05-05", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
