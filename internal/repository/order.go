package repository

import (
	"context"
	"strconv"

	"github.com/akormin/logoorder/internal/models"
	"github.com/akormin/logoorder/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (id, name, facebook, email, order_type, details, filenames, status)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
						RETURNING id, name, facebook, email, order_type, details, filenames, status, paypal_order_id, verified, created_at
`
	selectOrderByIDQuery = `
						SELECT id, name, facebook, email, order_type, details, filenames, status, paypal_order_id, verified, created_at
						FROM orders
						WHERE id = $1
`
	selectOrdersQuery = `
						SELECT id, name, facebook, email, order_type, details, filenames, status, paypal_order_id, verified, created_at
						FROM orders
						ORDER BY created_at
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1
						WHERE id = $2
`
	updateOrderAttachmentsQuery = `
						UPDATE orders
						SET filenames = $1
						WHERE id = $2
`
	captureOrderQuery = `
						UPDATE orders
						SET status = $1, paypal_order_id = $2, verified = TRUE
						WHERE id = $3
`
	setOrderVerifiedQuery = `
						UPDATE orders
						SET verified = $1
						WHERE id = $2
`
	nextOrderIDQuery = `SELECT nextval('order_id_seq')`
)

// OrderRepository is the Postgres order store
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (or *OrderRepository) scanOrder(row interface{ Scan(dest ...any) error }, order *models.Order) error {
	return row.Scan(
		&order.ID,
		&order.Name,
		&order.Facebook,
		&order.Email,
		&order.OrderType,
		&order.Details,
		&order.Filenames,
		&order.Status,
		&order.PaypalOrderID,
		&order.Verified,
		&order.CreatedAt,
	)
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	row := or.db.QueryRow(ctx, insertOrderQuery,
		order.ID,
		order.Name,
		order.Facebook,
		order.Email,
		order.OrderType,
		order.Details,
		order.Filenames,
		order.Status,
	)
	if err := or.scanOrder(row, order); err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by identifier
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order := models.Order{}
	if err := or.scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id), &order); err != nil {
		if postgres.IsNoRows(err) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// GetOrders returns all orders
func (or *OrderRepository) GetOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, selectOrdersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		if err := or.scanOrder(rows, &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateOrderStatus overwrites the order status
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, id, status string) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, status, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// UpdateOrderAttachments replaces the order attachment list
func (or *OrderRepository) UpdateOrderAttachments(ctx context.Context, id string, filenames []string) error {
	cmd, err := or.db.Exec(ctx, updateOrderAttachmentsQuery, filenames, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// CaptureOrder records a payment capture: status paid, payment reference, verified
func (or *OrderRepository) CaptureOrder(ctx context.Context, id, captureID string) error {
	cmd, err := or.db.Exec(ctx, captureOrderQuery, models.StatusPaid, captureID, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// SetOrderVerified stores the recomputed verified bit
func (or *OrderRepository) SetOrderVerified(ctx context.Context, id string, verified bool) error {
	cmd, err := or.db.Exec(ctx, setOrderVerifiedQuery, verified, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// SequenceAllocator allocates serial order identifiers from the database
// sequence, so allocation stays atomic across concurrent creates.
type SequenceAllocator struct {
	db *postgres.DB
}

// NewSequenceAllocator creates new SequenceAllocator instance
func NewSequenceAllocator(db *postgres.DB) *SequenceAllocator {
	return &SequenceAllocator{db: db}
}

// Allocate returns the next identifier in the sequence.
func (sa *SequenceAllocator) Allocate(ctx context.Context) (string, error) {
	var next int64
	if err := sa.db.QueryRow(ctx, nextOrderIDQuery).Scan(&next); err != nil {
		return "", err
	}
	return strconv.FormatInt(next, 10), nil
}
