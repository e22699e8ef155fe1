package adminclient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/akormin/logoorder/internal/attach"
	"github.com/akormin/logoorder/internal/logger"
	"go.uber.org/zap"
)

// Syncer mirrors server-side order state for an operator view. The server is
// the only source of truth: every refresh replaces the snapshot with the
// server's last response, and any failed call leaves the previous snapshot
// untouched.
type Syncer struct {
	api *Client

	mu     sync.RWMutex
	orders map[string]Order
	staged map[string]string
}

// NewSyncer creates new Syncer instance
func NewSyncer(api *Client) *Syncer {
	return &Syncer{
		api:    api,
		orders: map[string]Order{},
		staged: map[string]string{},
	}
}

// Refresh re-polls the order list. On failure the previous snapshot is kept
// and the error is returned for the caller to report.
func (s *Syncer) Refresh(ctx context.Context) error {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		logger.Log.Error("refresh orders", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	return nil
}

// Orders returns the current snapshot sorted by identifier.
func (s *Syncer) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })

	return orders
}

// Select fetches full detail for one order from the server and folds it into
// the snapshot.
func (s *Syncer) Select(ctx context.Context, id string) (*Order, error) {
	order, err := s.api.GetOrder(ctx, id)
	if err != nil {
		logger.Log.Error("select order", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.orders[order.ID] = *order
	s.mu.Unlock()

	return order, nil
}

// StageStatus stages a status change locally without touching the server.
func (s *Syncer) StageStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged[id] = status
}

// StagedStatus returns the staged status for an order, if any.
func (s *Syncer) StagedStatus(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.staged[id]
	return status, ok
}

// Commit pushes the staged status change for an order and re-polls the list
// so the snapshot reflects the authoritative state.
func (s *Syncer) Commit(ctx context.Context, id string) error {
	s.mu.RLock()
	status, ok := s.staged[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no staged status for order %s", id)
	}

	if err := s.api.UpdateStatus(ctx, id, status); err != nil {
		logger.Log.Error("commit status", zap.String("id", id), zap.Error(err))
		return err
	}

	s.mu.Lock()
	delete(s.staged, id)
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// DownloadAll fetches every attachment of every order into dir, one
// subdirectory per order namespace.
func (s *Syncer) DownloadAll(ctx context.Context, dir string) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	for _, order := range s.Orders() {
		if len(order.Filenames) == 0 {
			continue
		}

		orderDir := filepath.Join(dir, attach.Namespace(order.ID, order.OrderType))
		if err := os.MkdirAll(orderDir, 0o755); err != nil {
			return err
		}

		for _, filename := range order.Filenames {
			data, err := s.api.FetchAttachment(ctx, &order, filename)
			if err != nil {
				logger.Log.Error("fetch attachment",
					zap.String("id", order.ID),
					zap.String("filename", filename),
					zap.Error(err))
				continue
			}
			if err := os.WriteFile(filepath.Join(orderDir, filename), data, 0o644); err != nil {
				return err
			}
		}
	}

	return nil
}
