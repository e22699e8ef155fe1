package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/akormin/logoorder/internal/attach"
	"github.com/akormin/logoorder/internal/ident"
	"github.com/akormin/logoorder/internal/models"
	"github.com/akormin/logoorder/internal/payment"
	"github.com/akormin/logoorder/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, alloc ident.Allocator) (*OrderService, *memory.OrderRepository) {
	t.Helper()

	repo := memory.NewOrderRepository()
	if alloc == nil {
		alloc = memory.NewSequenceAllocator()
	}
	svc := NewOrderService(repo, attach.NewManager(t.TempDir()), alloc, payment.NewTrusting())
	return svc, repo
}

func validCreate() CreateOrder {
	return CreateOrder{
		Name:      "Ann",
		Email:     "a@x.com",
		OrderType: "logo",
		Details:   "blue theme",
	}
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	order, err := svc.Create(ctx, validCreate(), []attach.File{
		{Name: "a.jpg", Data: bytes.NewReader([]byte("jpg"))},
		{Name: "virus.exe", Data: bytes.NewReader([]byte("exe"))},
		{Name: "B.PNG", Data: bytes.NewReader([]byte("png"))},
		{Name: "notes.txt", Data: bytes.NewReader([]byte("txt"))},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.StatusPendingPayment, order.Status)
	assert.False(t, order.Verified)
	assert.Equal(t, []string{"a.jpg", "B.PNG"}, order.Filenames)

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "B.PNG"}, got.Filenames)
}

func TestOrderService_CreateValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateOrder
	}{
		{"missing_name", CreateOrder{Email: "a@x.com", OrderType: "logo", Details: "d"}},
		{"missing_email", CreateOrder{Name: "Ann", OrderType: "logo", Details: "d"}},
		{"missing_order_type", CreateOrder{Name: "Ann", Email: "a@x.com", Details: "d"}},
		{"missing_details", CreateOrder{Name: "Ann", Email: "a@x.com", OrderType: "logo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t, nil)

			_, err := svc.Create(ctx, tt.req, nil)
			assert.True(t, errors.Is(err, models.ErrValidation))

			// no order record was created
			orders, err := repo.GetOrders(ctx)
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func TestOrderService_CreateTokenIdentifiers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, ident.NewToken())

	first, err := svc.Create(ctx, validCreate(), nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, validCreate(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, first.ID, 36)
}

func TestOrderService_CaptureAndVerify(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	order, err := svc.Create(ctx, validCreate(), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Capture(ctx, order.ID, "PAY-123"))

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)
	assert.Equal(t, "PAY-123", got.PaypalOrderID)
	assert.True(t, got.Verified)

	// regress status: the verified bit stays stale until the next Verify
	require.NoError(t, svc.UpdateStatus(ctx, order.ID, models.StatusComplete))
	got, err = svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified)

	verified, err := svc.Verify(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, verified)

	got, err = svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, got.Verified)

	// verifying a paid order again flips it back
	require.NoError(t, svc.UpdateStatus(ctx, order.ID, models.StatusPaid))
	verified, err = svc.Verify(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestOrderService_CaptureErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	assert.True(t, errors.Is(svc.Capture(ctx, "1", ""), models.ErrEmptyCaptureID))
	assert.True(t, errors.Is(svc.Capture(ctx, "42", "PAY-123"), models.ErrDataNotFound))
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	order, err := svc.Create(ctx, validCreate(), nil)
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.UpdateStatus(ctx, order.ID, ""), models.ErrEmptyStatus))
	assert.True(t, errors.Is(svc.UpdateStatus(ctx, "42", models.StatusComplete), models.ErrDataNotFound))

	// any non-empty status is stored verbatim, known or not
	require.NoError(t, svc.UpdateStatus(ctx, order.ID, "waiting for customer"))
	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "waiting for customer", got.Status)
	assert.False(t, models.IsKnownStatus(got.Status))
}

type rejectingVerifier struct{}

func (rejectingVerifier) Confirm(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func TestOrderService_CaptureRejected(t *testing.T) {
	ctx := context.Background()

	repo := memory.NewOrderRepository()
	svc := NewOrderService(repo, attach.NewManager(t.TempDir()), memory.NewSequenceAllocator(), rejectingVerifier{})

	order, err := svc.Create(ctx, validCreate(), nil)
	require.NoError(t, err)

	err = svc.Capture(ctx, order.ID, "PAY-123")
	assert.True(t, errors.Is(err, models.ErrPaymentRejected))

	// the order is untouched
	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, got.Status)
	assert.False(t, got.Verified)
}
