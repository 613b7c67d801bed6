package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shakehouse/internal/model"
	"shakehouse/internal/mw"
	"shakehouse/internal/service"
	"shakehouse/internal/store"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// SubmitOrderHandler receives raw submissions from the ordering bot. A
// duplicate of a recent order answers 200 with the existing order id; a new
// order answers 201.
func SubmitOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub model.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "JSON inválido"})
			return
		}

		result, err := orderSvc.Submit(r.Context(), sub)
		if err != nil {
			slog.Error("order submit failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Erro ao salvar pedido"})
			return
		}

		if result.Duplicate {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":           true,
				"message":           "Pedido recebido, mas parece ser um duplicado de um pedido recente. Nenhuma nova entrada criada.",
				"pedidoIdExistente": result.Order.ID,
			})
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Pedido recebido com sucesso",
			"pedido":  result.Order,
		})
	}
}

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pedidos, err := orderSvc.List(r.Context())
		if err != nil {
			slog.Error("order list failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Erro ao ler pedidos"})
			return
		}
		if pedidos == nil {
			pedidos = []model.Order{}
		}
		writeJSON(w, http.StatusOK, pedidos)
	}
}

type updateStatusRequest struct {
	OrderID   string       `json:"orderId"`
	NewStatus model.Status `json:"newStatus"`
}

func UpdateStatusHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := mw.PrincipalFromContext(r.Context())

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "JSON inválido"})
			return
		}

		change, err := orderSvc.ChangeStatus(r.Context(), req.OrderID, req.NewStatus, principal.Username)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidStatus):
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"success": false,
					"message": "Status inválido",
				})
			case errors.Is(err, store.ErrOrderNotFound):
				writeJSON(w, http.StatusNotFound, map[string]any{
					"success": false,
					"message": "Pedido não encontrado",
				})
			default:
				slog.Error("status update failed", "order", req.OrderID, "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Erro ao atualizar status"})
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Status atualizado com sucesso",
			"orderId":   change.OrderID,
			"oldStatus": change.OldStatus,
			"newStatus": change.NewStatus,
		})
	}
}

func DeleteOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := mw.PrincipalFromContext(r.Context())
		orderID := chi.URLParam(r, "orderID")

		if _, err := orderSvc.Delete(r.Context(), orderID, principal.Username); err != nil {
			if errors.Is(err, store.ErrOrderNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]any{
					"success": false,
					"message": "Pedido não encontrado",
				})
				return
			}
			slog.Error("order delete failed", "order", orderID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Erro ao remover pedido"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Pedido removido com sucesso",
			"orderId": orderID,
		})
	}
}

// PingHandler answers the uptime monitor.
func PingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	}
}
