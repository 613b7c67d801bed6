package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shakehouse/internal/model"
	"shakehouse/internal/store"
)

var ErrInvalidStatus = errors.New("invalid order status")

// SubmitResult is the outcome of one submission: either a freshly created
// order or, when Duplicate is set, the earlier order the submission repeats.
type SubmitResult struct {
	Order     model.Order
	Duplicate bool
}

type StatusChange struct {
	OrderID   string
	OldStatus model.Status
	NewStatus model.Status
}

// OrderService orchestrates the order lifecycle: submission with duplicate
// suppression, status transitions and deletion. The store write always
// completes before a notification is enqueued.
type OrderService struct {
	store *store.OrderStore
	audit *store.AuditLog
	queue Queue

	now   func() time.Time
	newID func() string
}

func NewOrderService(st *store.OrderStore, audit *store.AuditLog, queue Queue) *OrderService {
	return &OrderService{
		store: st,
		audit: audit,
		queue: queue,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Submit normalizes the raw submission, suppresses recent duplicates and
// persists the new order. A duplicate is not an error: the existing order is
// returned with Duplicate set and nothing is written or notified.
func (s *OrderService) Submit(ctx context.Context, sub model.Submission) (SubmitResult, error) {
	pedidos, err := s.store.LoadAll()
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load orders: %w", err)
	}

	now := s.now()
	if dup := findRecentDuplicate(pedidos, sub.Telefone, sub.Cliente, sub.Produtos, now); dup != nil {
		slog.Warn("duplicate submission suppressed", "telefone", sub.Telefone, "existing", dup.ID)
		return SubmitResult{Order: *dup, Duplicate: true}, nil
	}

	pedido := model.NewOrder(sub, s.newID(), now)
	if err := s.store.AppendOne(pedido); err != nil {
		return SubmitResult{}, fmt.Errorf("append order: %w", err)
	}

	s.audit.OrderCreated(pedido)
	s.queue.Enqueue(Event{Kind: EventNewOrder, Order: pedido})
	slog.Info("order created", "id", pedido.ID, "cliente", pedido.NomeCliente)

	return SubmitResult{Order: pedido}, nil
}

// List returns the full order collection.
func (s *OrderService) List(ctx context.Context) ([]model.Order, error) {
	return s.store.LoadAll()
}

// ChangeStatus moves an order to newStatus. Unknown statuses are rejected
// with ErrInvalidStatus before any store access.
func (s *OrderService) ChangeStatus(ctx context.Context, id string, newStatus model.Status, actor string) (StatusChange, error) {
	if !newStatus.Valid() {
		return StatusChange{}, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	oldStatus, updated, err := s.store.UpdateStatus(id, newStatus)
	if err != nil {
		return StatusChange{}, err
	}

	s.audit.StatusUpdated(actor, id, oldStatus, newStatus)
	s.queue.Enqueue(Event{
		Kind:      EventStatusChanged,
		Order:     *updated,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	slog.Info("order status updated", "id", id, "from", oldStatus, "to", newStatus, "actor", actor)

	return StatusChange{OrderID: id, OldStatus: oldStatus, NewStatus: newStatus}, nil
}

// Delete removes an order permanently and returns the removed record.
func (s *OrderService) Delete(ctx context.Context, id, actor string) (*model.Order, error) {
	removed, err := s.store.Remove(id)
	if err != nil {
		return nil, err
	}

	s.audit.OrderRemoved(actor, *removed)
	slog.Info("order removed", "id", id, "actor", actor)

	return removed, nil
}
