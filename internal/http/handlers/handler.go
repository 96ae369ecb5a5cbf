package handlers

import (
	"cardtable/internal/ws"
)

// Handler bundles the dependencies of the HTTP endpoints.
type Handler struct {
	Hub           *ws.Hub
	AllowedOrigin string
}

func NewHandler(hub *ws.Hub, allowedOrigin string) *Handler {
	return &Handler{Hub: hub, AllowedOrigin: allowedOrigin}
}
