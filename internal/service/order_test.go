package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shakehouse/internal/config"
	"shakehouse/internal/model"
	"shakehouse/internal/store"
)

type recordingQueue struct {
	events []Event
}

func (q *recordingQueue) Enqueue(ev Event) { q.events = append(q.events, ev) }

// newTestService builds an OrderService over a temp-dir store with a fixed
// clock and sequential ids.
func newTestService(t *testing.T) (*OrderService, *store.OrderStore, *recordingQueue) {
	t.Helper()

	dir := t.TempDir()
	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	queue := &recordingQueue{}
	svc := NewOrderService(st, store.NewAuditLog(dir), queue)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	return svc, st, queue
}

func submission(cliente, telefone string, produtos ...string) model.Submission {
	return model.Submission{
		Cliente:  cliente,
		Telefone: telefone,
		Produtos: produtos,
	}
}

func TestSubmitCreatesOrder(t *testing.T) {
	svc, st, queue := newTestService(t)

	sub := submission("Ana", "11999999999", "Shake G")
	sub.ValorTotal = json.RawMessage(`20.0`)

	result, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Duplicate {
		t.Fatal("Submit flagged a fresh order as duplicate")
	}

	order := result.Order
	if order.ID != "id-1" {
		t.Errorf("ID = %q, want id-1", order.ID)
	}
	if order.Status != model.StatusReceived {
		t.Errorf("Status = %q, want %q", order.Status, model.StatusReceived)
	}
	if order.ValorTotal == nil || *order.ValorTotal != 20.0 {
		t.Errorf("ValorTotal = %v, want 20.0", order.ValorTotal)
	}

	pedidos, _ := st.LoadAll()
	if len(pedidos) != 1 {
		t.Fatalf("persisted %d orders, want 1", len(pedidos))
	}

	if len(queue.events) != 1 || queue.events[0].Kind != EventNewOrder {
		t.Fatalf("queue = %+v, want one novo_pedido event", queue.events)
	}
	if queue.events[0].Order.ID != "id-1" {
		t.Errorf("event order id = %q, want id-1", queue.events[0].Order.ID)
	}
}

func TestSubmitSuppressesDuplicate(t *testing.T) {
	svc, st, queue := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	second, err := svc.Submit(ctx, submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("second Submit not flagged as duplicate")
	}
	if second.Order.ID != first.Order.ID {
		t.Errorf("duplicate references %q, want %q", second.Order.ID, first.Order.ID)
	}

	pedidos, _ := st.LoadAll()
	if len(pedidos) != 1 {
		t.Fatalf("persisted %d orders, want 1", len(pedidos))
	}
	if len(queue.events) != 1 {
		t.Errorf("queued %d events, want 1 (no event for the duplicate)", len(queue.events))
	}
}

func TestSubmitDistinctAfterWindow(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base.Add(6 * time.Minute) }

	second, err := svc.Submit(ctx, submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if second.Duplicate {
		t.Fatal("submission after the window flagged as duplicate")
	}
	if second.Order.ID == first.Order.ID {
		t.Error("second order reused the first id")
	}

	pedidos, _ := st.LoadAll()
	if len(pedidos) != 2 {
		t.Fatalf("persisted %d orders, want 2", len(pedidos))
	}
}

func TestChangeStatus(t *testing.T) {
	svc, st, queue := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	change, err := svc.ChangeStatus(ctx, created.Order.ID, model.StatusPreparing, "funcionario")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if change.OldStatus != model.StatusReceived || change.NewStatus != model.StatusPreparing {
		t.Errorf("change = %+v", change)
	}

	pedidos, _ := st.LoadAll()
	if pedidos[0].Status != model.StatusPreparing {
		t.Errorf("persisted status = %q, want Preparing", pedidos[0].Status)
	}

	last := queue.events[len(queue.events)-1]
	if last.Kind != EventStatusChanged || last.OldStatus != model.StatusReceived || last.NewStatus != model.StatusPreparing {
		t.Errorf("status event = %+v", last)
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	svc, st, queue := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = svc.ChangeStatus(ctx, created.Order.ID, "EmRota", "funcionario")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("ChangeStatus error = %v, want ErrInvalidStatus", err)
	}

	pedidos, _ := st.LoadAll()
	if pedidos[0].Status != model.StatusReceived {
		t.Error("rejected status change mutated the order")
	}
	if len(queue.events) != 1 {
		t.Error("rejected status change enqueued an event")
	}
}

func TestChangeStatusNotFound(t *testing.T) {
	svc, _, queue := newTestService(t)

	_, err := svc.ChangeStatus(context.Background(), "missing", model.StatusPreparing, "funcionario")
	if !errors.Is(err, store.ErrOrderNotFound) {
		t.Fatalf("ChangeStatus error = %v, want ErrOrderNotFound", err)
	}
	if len(queue.events) != 0 {
		t.Error("not-found status change enqueued an event")
	}
}

func TestDelete(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	removed, err := svc.Delete(ctx, created.Order.ID, "admin")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.ID != created.Order.ID {
		t.Errorf("removed.ID = %q, want %q", removed.ID, created.Order.ID)
	}

	pedidos, _ := st.LoadAll()
	if len(pedidos) != 0 {
		t.Errorf("persisted %d orders after delete, want 0", len(pedidos))
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Delete(context.Background(), "missing", "admin"); !errors.Is(err, store.ErrOrderNotFound) {
		t.Fatalf("Delete error = %v, want ErrOrderNotFound", err)
	}
}

// TestSubmitSucceedsWithFailingWebhook wires a real notifier against an
// endpoint that always answers 500 and checks the primary operation is
// unaffected.
func TestSubmitSucceedsWithFailingWebhook(t *testing.T) {
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer endpoint.Close()

	dir := t.TempDir()
	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	notifCfg := &config.Notifications{}
	notifCfg.SetEndpoints(endpoint.URL, endpoint.URL, "", true)
	notifier := NewNotifier(notifCfg)

	svc := NewOrderService(st, store.NewAuditLog(dir), directQueue{notifier: notifier})

	result, err := svc.Submit(context.Background(), submission("Ana", "11999999999", "Shake G"))
	if err != nil {
		t.Fatalf("Submit with failing webhook: %v", err)
	}
	if result.Duplicate {
		t.Fatal("unexpected duplicate")
	}

	pedidos, _ := st.LoadAll()
	if len(pedidos) != 1 {
		t.Fatalf("persisted %d orders, want 1", len(pedidos))
	}

	if _, err := svc.ChangeStatus(context.Background(), result.Order.ID, model.StatusPreparing, "funcionario"); err != nil {
		t.Fatalf("ChangeStatus with failing webhook: %v", err)
	}
}

// directQueue delivers synchronously and drops the error, standing in for the
// background worker.
type directQueue struct {
	notifier *Notifier
}

func (q directQueue) Enqueue(ev Event) {
	_ = q.notifier.Send(context.Background(), ev)
}
