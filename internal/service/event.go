package service

import "shakehouse/internal/model"

type EventKind string

const (
	EventNewOrder      EventKind = "novo_pedido"
	EventStatusChanged EventKind = "atualizacao_status"
)

// Event is one lifecycle notification bound for the external automation
// platform. OldStatus and NewStatus are set only for EventStatusChanged.
type Event struct {
	Kind      EventKind
	Order     model.Order
	OldStatus model.Status
	NewStatus model.Status
}

// Queue accepts events for background delivery. Enqueue must not block the
// request path.
type Queue interface {
	Enqueue(ev Event)
}
