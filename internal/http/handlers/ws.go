package handlers

import (
	"net/http"

	"cardtable/internal/logger"
	"cardtable/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const maxRoomNameLen = 32

// WS upgrades GET /ws?room=<name>&uname=<player> into a room session. Room
// resolution (including the cold-start load) happens before the upgrade, so a
// store failure surfaces as a plain HTTP error.
func (h *Handler) WS() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomName := c.Query("room")
		if roomName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room required"})
			return
		}
		if len(roomName) > maxRoomNameLen {
			c.JSON(http.StatusNotFound, gin.H{"error": "room name too long"})
			return
		}

		playerName := c.Query("uname")
		if playerName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "uname required"})
			return
		}

		room, err := h.Hub.Room(c.Request.Context(), roomName)
		if err != nil {
			logger.Error("resolve room", "room", roomName, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room unavailable"})
			return
		}

		allowedOrigin := h.AllowedOrigin
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(playerName, conn, room)
		go client.Run()
	}
}
