package form

import "tenpo_transactions/internal/models"

// FieldState drives the styling of one input.
type FieldState string

const (
	Neutral FieldState = ""
	Valid   FieldState = "is-valid"
	Invalid FieldState = "is-invalid"
)

var labels = map[string]string{
	models.FieldNumeroTransaccion: "Id transacción",
	models.FieldNombreTenpista:    "Nombre Tenpista",
	models.FieldMontoPesos:        "Monto (Pesos)",
	models.FieldGiroComercio:      "Giro / Comercio",
	models.FieldFechaTransaccion:  "Fecha transacción",
}

var invalidFeedback = map[string]string{
	models.FieldNumeroTransaccion: "El Id de transacción debe ser mayor a 0",
	models.FieldNombreTenpista:    "El nombre es obligatorio",
	models.FieldMontoPesos:        "El monto debe ser mayor a 0",
	models.FieldGiroComercio:      "El giro es obligatorio",
	models.FieldFechaTransaccion:  "La fecha no puede ser futura",
}

func Label(field string) string {
	return labels[field]
}

func InvalidFeedback(field string) string {
	return invalidFeedback[field]
}
