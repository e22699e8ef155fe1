package service

import (
	"context"
	"fmt"

	"github.com/akormin/logoorder/internal/attach"
	"github.com/akormin/logoorder/internal/ident"
	"github.com/akormin/logoorder/internal/logger"
	"github.com/akormin/logoorder/internal/models"
	"github.com/akormin/logoorder/internal/payment"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to the store
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by identifier
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetOrders returns all orders
	GetOrders(ctx context.Context) ([]models.Order, error)
	// UpdateOrderStatus overwrites the order status
	UpdateOrderStatus(ctx context.Context, id, status string) error
	// UpdateOrderAttachments replaces the order attachment list
	UpdateOrderAttachments(ctx context.Context, id string, filenames []string) error
	// CaptureOrder records a payment capture
	CaptureOrder(ctx context.Context, id, captureID string) error
	// SetOrderVerified stores the recomputed verified bit
	SetOrderVerified(ctx context.Context, id string, verified bool) error
}

// AttachmentStore persists uploaded files under a per-order namespace
type AttachmentStore interface {
	Store(orderID, orderType string, files []attach.File) ([]string, error)
}

// CreateOrder carries the submission fields for a new order.
type CreateOrder struct {
	Name      string `validate:"required"`
	Facebook  string
	Email     string `validate:"required"`
	OrderType string `validate:"required"`
	Details   string `validate:"required"`
}

// OrderService implements the order lifecycle
type OrderService struct {
	repo        OrderRepository
	attachments AttachmentStore
	alloc       ident.Allocator
	verifier    payment.Verifier
	validate    *validator.Validate
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, attachments AttachmentStore, alloc ident.Allocator, verifier payment.Verifier) *OrderService {
	return &OrderService{
		repo:        repo,
		attachments: attachments,
		alloc:       alloc,
		verifier:    verifier,
		validate:    validator.New(),
	}
}

// Create validates the submission, allocates an identifier, commits the order
// record and then persists its attachments. An attachment failure after the
// record is committed is reported, but the order record is not rolled back;
// it keeps whatever part of the attachment list was stored.
func (os *OrderService) Create(ctx context.Context, req CreateOrder, files []attach.File) (*models.Order, error) {
	if err := os.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	id, err := os.alloc.Allocate(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate order id: %w", err)
	}

	order := &models.Order{
		ID:        id,
		Name:      req.Name,
		Facebook:  req.Facebook,
		Email:     req.Email,
		OrderType: req.OrderType,
		Details:   req.Details,
		Filenames: []string{},
		Status:    models.StatusPendingPayment,
	}

	order, err = os.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	logger.Log.Info("created order",
		zap.String("id", order.ID),
		zap.String("name", order.Name),
		zap.String("email", order.Email),
		zap.String("order_type", order.OrderType))

	saved, attachErr := os.attachments.Store(order.ID, order.OrderType, files)
	if len(saved) > 0 {
		if err := os.repo.UpdateOrderAttachments(ctx, order.ID, saved); err != nil {
			return order, fmt.Errorf("update order attachments: %w", err)
		}
		order.Filenames = saved
	}
	if attachErr != nil {
		logger.Log.Error("store attachments",
			zap.String("id", order.ID),
			zap.Error(attachErr))
		return order, fmt.Errorf("store attachments: %w", attachErr)
	}

	return order, nil
}

// Get returns one order by identifier
func (os *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return os.repo.GetOrderByID(ctx, id)
}

// List returns all orders
func (os *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return os.repo.GetOrders(ctx)
}

// UpdateStatus overwrites the order status. Any non-empty status is stored
// verbatim; lifecycle legality is an operator convention, not enforced here.
func (os *OrderService) UpdateStatus(ctx context.Context, id, status string) error {
	if status == "" {
		return models.ErrEmptyStatus
	}

	if err := os.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}

	logger.Log.Info("updated order status",
		zap.String("id", id),
		zap.String("status", status))

	return nil
}

// Capture records a payment capture against the order. The configured
// verifier decides whether the capture is accepted before the order is
// marked paid.
func (os *OrderService) Capture(ctx context.Context, id, captureID string) error {
	if captureID == "" {
		return models.ErrEmptyCaptureID
	}

	ok, err := os.verifier.Confirm(ctx, captureID)
	if err != nil {
		return fmt.Errorf("confirm capture: %w", err)
	}
	if !ok {
		return models.ErrPaymentRejected
	}

	if err := os.repo.CaptureOrder(ctx, id, captureID); err != nil {
		return err
	}

	logger.Log.Info("captured payment",
		zap.String("id", id),
		zap.String("capture_id", captureID))

	return nil
}

// Verify recomputes the verified bit as "status is paid right now" and
// persists it. The stored bit can go stale after a later status change; only
// the next Verify call corrects it.
func (os *OrderService) Verify(ctx context.Context, id string) (bool, error) {
	order, err := os.repo.GetOrderByID(ctx, id)
	if err != nil {
		return false, err
	}

	verified := order.Status == models.StatusPaid
	if err := os.repo.SetOrderVerified(ctx, id, verified); err != nil {
		return false, err
	}

	return verified, nil
}
