package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shakehouse/internal/config"
	"shakehouse/internal/model"
)

// Notifier posts lifecycle events to the configured n8n webhooks. It reads
// the injected settings per dispatch, so a Reload takes effect immediately.
// Errors are returned to the delivery worker, never to the request path.
type Notifier struct {
	cfg    *config.Notifications
	client *http.Client
}

type webhookEnvelope struct {
	Evento EventKind `json:"evento"`
	Pedido any       `json:"pedido"`
}

type newOrderSnapshot struct {
	ID          string       `json:"id"`
	NomeCliente string       `json:"nomeCliente"`
	Telefone    string       `json:"telefone"`
	Produtos    []string     `json:"produtos"`
	ValorTotal  *float64     `json:"valorTotal"`
	Status      model.Status `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
}

type statusChangeSnapshot struct {
	ID           string       `json:"id"`
	NomeCliente  string       `json:"nomeCliente"`
	Telefone     string       `json:"telefone"`
	StatusAntigo model.Status `json:"statusAntigo"`
	StatusNovo   model.Status `json:"statusNovo"`
	Timestamp    time.Time    `json:"timestamp"`
}

func NewNotifier(cfg *config.Notifications) *Notifier {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Send delivers one event. A disabled notifier or an unset target URL is a
// silent no-op, not an error.
func (n *Notifier) Send(ctx context.Context, ev Event) error {
	if !n.cfg.Enabled() {
		return nil
	}

	var url string
	var pedido any
	switch ev.Kind {
	case EventNewOrder:
		url = n.cfg.NewOrderURL()
		pedido = newOrderSnapshot{
			ID:          ev.Order.ID,
			NomeCliente: ev.Order.NomeCliente,
			Telefone:    ev.Order.Telefone,
			Produtos:    ev.Order.Produtos,
			ValorTotal:  ev.Order.ValorTotal,
			Status:      ev.Order.Status,
			Timestamp:   ev.Order.Timestamp,
		}
	case EventStatusChanged:
		url = n.cfg.StatusUpdateURL()
		pedido = statusChangeSnapshot{
			ID:           ev.Order.ID,
			NomeCliente:  ev.Order.NomeCliente,
			Telefone:     ev.Order.Telefone,
			StatusAntigo: ev.OldStatus,
			StatusNovo:   ev.NewStatus,
			Timestamp:    time.Now().UTC(),
		}
	default:
		return fmt.Errorf("unknown event kind: %s", ev.Kind)
	}

	if url == "" {
		return nil
	}

	body, err := json.Marshal(webhookEnvelope{Evento: ev.Kind, Pedido: pedido})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := n.cfg.APIKey(); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook %s returned status %d", url, resp.StatusCode)
	}
	return nil
}
