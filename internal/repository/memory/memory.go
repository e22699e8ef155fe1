package memory

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akormin/logoorder/internal/models"
)

// OrderRepository is an in-process order store. It backs deployments without
// a database DSN and the test suites.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
	ids    []string
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: map[string]*models.Order{},
	}
}

func cloneOrder(order *models.Order) *models.Order {
	c := *order
	c.Filenames = append([]string{}, order.Filenames...)
	return &c
}

// CreateOrder inserts new order to the store
func (or *OrderRepository) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	or.mu.Lock()
	defer or.mu.Unlock()

	if _, ok := or.orders[order.ID]; ok {
		return nil, models.ErrConflictData
	}

	order.CreatedAt = time.Now()
	or.orders[order.ID] = cloneOrder(order)
	or.ids = append(or.ids, order.ID)

	return order, nil
}

// GetOrderByID returns order by identifier
func (or *OrderRepository) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	or.mu.RLock()
	defer or.mu.RUnlock()

	order, ok := or.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}

	return cloneOrder(order), nil
}

// GetOrders returns all orders in creation order
func (or *OrderRepository) GetOrders(_ context.Context) ([]models.Order, error) {
	or.mu.RLock()
	defer or.mu.RUnlock()

	orders := []models.Order{}
	for _, id := range or.ids {
		orders = append(orders, *cloneOrder(or.orders[id]))
	}

	return orders, nil
}

// UpdateOrderStatus overwrites the order status
func (or *OrderRepository) UpdateOrderStatus(_ context.Context, id, status string) error {
	or.mu.Lock()
	defer or.mu.Unlock()

	order, ok := or.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}

	order.Status = status
	return nil
}

// UpdateOrderAttachments replaces the order attachment list
func (or *OrderRepository) UpdateOrderAttachments(_ context.Context, id string, filenames []string) error {
	or.mu.Lock()
	defer or.mu.Unlock()

	order, ok := or.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}

	order.Filenames = append([]string{}, filenames...)
	return nil
}

// CaptureOrder records a payment capture: status paid, payment reference, verified
func (or *OrderRepository) CaptureOrder(_ context.Context, id, captureID string) error {
	or.mu.Lock()
	defer or.mu.Unlock()

	order, ok := or.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}

	order.Status = models.StatusPaid
	order.PaypalOrderID = captureID
	order.Verified = true
	return nil
}

// SetOrderVerified stores the recomputed verified bit
func (or *OrderRepository) SetOrderVerified(_ context.Context, id string, verified bool) error {
	or.mu.Lock()
	defer or.mu.Unlock()

	order, ok := or.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}

	order.Verified = verified
	return nil
}

// SequenceAllocator allocates serial identifiers from an atomic counter.
type SequenceAllocator struct {
	next atomic.Uint64
}

// NewSequenceAllocator creates new SequenceAllocator instance
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{}
}

// Allocate returns the next identifier in the sequence.
func (sa *SequenceAllocator) Allocate(_ context.Context) (string, error) {
	return strconv.FormatUint(sa.next.Add(1), 10), nil
}
