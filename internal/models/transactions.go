package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is the record exchanged with the backend. A nil IdTransaccion
// marks a draft that has never been persisted.
type Transaction struct {
	IdTransaccion     *int             `json:"idTransaccion,omitempty"`
	NumeroTransaccion *int             `json:"numeroTransaccion"`
	NombreTenpista    string           `json:"nombreTenpista"`
	MontoPesos        *decimal.Decimal `json:"montoPesos"`
	GiroComercio      string           `json:"giroComercio"`
	FechaTransaccion  string           `json:"fechaTransaccion"`
}

// Field names as posted by the page and sent to the backend.
const (
	FieldNumeroTransaccion = "numeroTransaccion"
	FieldNombreTenpista    = "nombreTenpista"
	FieldMontoPesos        = "montoPesos"
	FieldGiroComercio      = "giroComercio"
	FieldFechaTransaccion  = "fechaTransaccion"
)

// EditableFields lists the five business fields in display order.
var EditableFields = []string{
	FieldNumeroTransaccion,
	FieldNombreTenpista,
	FieldMontoPesos,
	FieldGiroComercio,
	FieldFechaTransaccion,
}

// MarshalJSON sends montoPesos as a JSON number instead of decimal's quoted string.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction

	var monto *json.Number
	if t.MontoPesos != nil {
		n := json.Number(t.MontoPesos.String())
		monto = &n
	}

	return json.Marshal(struct {
		alias
		MontoPesos *json.Number `json:"montoPesos"`
	}{alias(t), monto})
}

func EmptyTransaction() Transaction {
	return Transaction{}
}

func (t Transaction) IsPersisted() bool {
	return t.IdTransaccion != nil
}

// ID returns the persisted id, or 0 for a draft.
func (t Transaction) ID() int {
	if t.IdTransaccion == nil {
		return 0
	}
	return *t.IdTransaccion
}

// Clone copies the pointer fields so the result never aliases t.
func (t Transaction) Clone() Transaction {
	c := t
	if t.IdTransaccion != nil {
		id := *t.IdTransaccion
		c.IdTransaccion = &id
	}
	if t.NumeroTransaccion != nil {
		n := *t.NumeroTransaccion
		c.NumeroTransaccion = &n
	}
	if t.MontoPesos != nil {
		m := *t.MontoPesos
		c.MontoPesos = &m
	}
	return c
}

// WithoutID returns a copy suitable for a create request.
func (t Transaction) WithoutID() Transaction {
	c := t.Clone()
	c.IdTransaccion = nil
	return c
}

func IntPtr(v int) *int {
	return &v
}

func AmountPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
