package service

import (
	"slices"
	"time"

	"shakehouse/internal/model"
)

// duplicateWindow is the span within which an identical resubmission is
// treated as a bot retry rather than a new order.
const duplicateWindow = 5 * time.Minute

// findRecentDuplicate returns the first order whose phone and customer name
// match exactly, whose product multiset matches regardless of ordering, and
// which was created less than duplicateWindow before now. Empty phone and
// name on both sides compare equal; anonymous submissions can therefore
// false-positive against each other.
func findRecentDuplicate(pedidos []model.Order, telefone, cliente string, produtos []string, now time.Time) *model.Order {
	want := sortedCopy(produtos)

	for i := range pedidos {
		p := &pedidos[i]
		if p.Telefone != telefone || p.NomeCliente != cliente {
			continue
		}
		if now.Sub(p.Timestamp) >= duplicateWindow {
			continue
		}
		if !slices.Equal(sortedCopy(p.Produtos), want) {
			continue
		}
		return p
	}
	return nil
}

func sortedCopy(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	slices.Sort(out)
	return out
}
