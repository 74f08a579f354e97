package handlers

import (
	"lawdesk/services/signaling"

	"github.com/gin-gonic/gin"
)

type SocketHandler struct {
	Hub *signaling.Hub
}

func NewSocketHandler(hub *signaling.Hub) *SocketHandler {
	return &SocketHandler{Hub: hub}
}

// ServeSocket upgrades an authenticated request to a signaling connection.
func (h *SocketHandler) ServeSocket(c *gin.Context) {
	h.Hub.ServeWS(c.Writer, c.Request, identityFrom(c))
}
