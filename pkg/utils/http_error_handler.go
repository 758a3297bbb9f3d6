package utils

import (
	"net/http"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONStatus(w, statusCode, errorResponse{
		Status:  "error",
		Message: message,
	})
}
