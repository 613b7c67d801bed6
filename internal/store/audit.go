package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shakehouse/internal/model"
)

// AuditLog appends human-readable lines about order mutations to per-event
// files in the data directory. The files are a side channel for the shop
// owner, not authoritative state; write failures are logged and ignored.
type AuditLog struct {
	dir string
}

func NewAuditLog(dataDir string) *AuditLog {
	return &AuditLog{dir: dataDir}
}

func (a *AuditLog) OrderCreated(pedido model.Order) {
	snapshot, err := json.Marshal(pedido)
	if err != nil {
		slog.Warn("audit: encode order failed", "order", pedido.ID, "error", err)
		return
	}
	a.append("pedidos.log", "Novo pedido: "+string(snapshot))
}

func (a *AuditLog) StatusUpdated(actor, orderID string, oldStatus, newStatus model.Status) {
	a.append("atualizacoes.log",
		fmt.Sprintf("Status atualizado por %s: Pedido %s de %s para %s", actor, orderID, oldStatus, newStatus))
}

func (a *AuditLog) OrderRemoved(actor string, pedido model.Order) {
	snapshot, err := json.Marshal(pedido)
	if err != nil {
		slog.Warn("audit: encode order failed", "order", pedido.ID, "error", err)
		return
	}
	a.append("pedidos_removidos.log", fmt.Sprintf("Pedido removido por %s: %s", actor, snapshot))
}

func (a *AuditLog) append(name, line string) {
	f, err := os.OpenFile(filepath.Join(a.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("audit log unavailable", "file", name, "error", err)
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "[%s] %s\n", time.Now().UTC().Format(time.RFC3339), line); err != nil {
		slog.Warn("audit log write failed", "file", name, "error", err)
	}
}
