package alert

import "net/http"

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type Message struct {
	Kind Kind
	Text string
}

const (
	RateLimitMessage = "❌ Ha excedido el máximo de solicitudes por minuto"
	ConflictMessage  = "⚠️ La transacción ya existe"
	InternalMessage  = "🔥 Error interno del servidor"
)

var successTexts = map[Operation]string{
	OpCreate: "✅ Transacción creada correctamente",
	OpUpdate: "✅ Transacción actualizada correctamente",
	OpDelete: "✅ Transacción eliminada correctamente",
}

var failureTexts = map[Operation]string{
	OpCreate: "❌ Error al crear la transacción",
	OpUpdate: "❌ Error al actualizar la transacción",
	OpDelete: "❌ Error al eliminar la transacción",
}

var dangerTexts = map[int]string{
	http.StatusTooManyRequests:     RateLimitMessage,
	http.StatusConflict:            ConflictMessage,
	http.StatusInternalServerError: InternalMessage,
}

// IsSuccess reports whether status completes op. Deletes only accept 200.
func IsSuccess(op Operation, status int) bool {
	switch status {
	case http.StatusOK:
		return true
	case http.StatusCreated:
		return op != OpDelete
	default:
		return false
	}
}

// MessageFor maps the outcome of op to what the user sees. serverError is the
// backend's own explanation, shown for 400 responses.
func MessageFor(op Operation, status int, serverError string) Message {
	if IsSuccess(op, status) {
		return Message{Kind: Success, Text: successTexts[op]}
	}
	if status == http.StatusBadRequest {
		return Message{Kind: Danger, Text: "❌ " + serverError}
	}
	if text, ok := dangerTexts[status]; ok {
		return Message{Kind: Danger, Text: text}
	}
	return Failure(op)
}

// Failure is the generic message for op, also used when the request never
// reached the backend.
func Failure(op Operation) Message {
	text, ok := failureTexts[op]
	if !ok {
		text = "❌ Error al procesar la transacción"
	}
	return Message{Kind: Danger, Text: text}
}
