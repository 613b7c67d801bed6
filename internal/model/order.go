package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusReceived         Status = "Received"
	StatusPreparing        Status = "Preparing"
	StatusReadyForDelivery Status = "ReadyForDelivery"
	StatusOutForDelivery   Status = "OutForDelivery"
	StatusDelivered        Status = "Delivered"
	StatusCancelled        Status = "Cancelled"
)

// Valid reports whether s is one of the six delivery lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusPreparing, StatusReadyForDelivery,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is the persisted record for a single customer purchase. JSON field
// names match the pedidos.json layout written by earlier deployments.
type Order struct {
	ID             string    `json:"id"`
	NomeCliente    string    `json:"nomeCliente"`
	Telefone       string    `json:"telefone"`
	Endereco       string    `json:"endereco"`
	Produtos       []string  `json:"produtos"`
	ValorTotal     *float64  `json:"valorTotal"`
	Status         Status    `json:"status"`
	FormaPagamento string    `json:"formaPagamento"`
	Timestamp      time.Time `json:"timestamp"`
}

// Submission is the raw inbound payload from the ordering channel. Field
// names follow the bot's wire format, including the accented key.
type Submission struct {
	Cliente        string          `json:"Cliente"`
	Telefone       string          `json:"Telefone"`
	Endereco       string          `json:"Endereço"`
	Produtos       ProductList     `json:"Produtos"`
	FormaPagamento string          `json:"Forma de Pagamento"`
	ValorTotal     json.RawMessage `json:"ValorTotal"`
	ValorTotalAlt  json.RawMessage `json:"valorTotal"`
}

// ProductList unmarshals either a JSON array of strings or a single bare
// value; the bot sends a scalar when the customer orders one item.
type ProductList []string

func (p *ProductList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*p = many
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*p = ProductList{one}
		return nil
	}

	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*p = nil
		return nil
	}
	*p = ProductList{strings.Trim(raw, `"`)}
	return nil
}

// Total resolves the submitted order value, preferring the capitalized key.
// Returns nil when the value is absent or not numeric.
func (s Submission) Total() *float64 {
	for _, raw := range []json.RawMessage{s.ValorTotal, s.ValorTotalAlt} {
		if v := parseTotal(raw); v != nil {
			return v
		}
	}
	return nil
}

func parseTotal(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

// NewOrder normalizes a submission into a well-formed Order. Missing fields
// default to empty strings, produtos is always a slice, the initial status is
// Received. Pure; id and timestamp are supplied by the caller.
func NewOrder(sub Submission, id string, now time.Time) Order {
	produtos := []string(sub.Produtos)
	if produtos == nil {
		produtos = []string{}
	}

	return Order{
		ID:             id,
		NomeCliente:    sub.Cliente,
		Telefone:       sub.Telefone,
		Endereco:       sub.Endereco,
		Produtos:       produtos,
		ValorTotal:     sub.Total(),
		Status:         StatusReceived,
		FormaPagamento: sub.FormaPagamento,
		Timestamp:      now,
	}
}
