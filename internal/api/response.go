package api

import (
	"encoding/json"
	"net/http"

	"messaging/infrastructure"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// WriteError answers with the status and client-safe text carried by err.
func WriteError(w http.ResponseWriter, err error) {
	WriteText(w, infrastructure.HTTPStatus(err), infrastructure.ClientMessage(err))
}
