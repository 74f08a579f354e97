package handlers

import (
	"net/http"
	"time"

	"lawdesk/models"
	"lawdesk/services/chat"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	Chat chat.ChatService
}

func NewMessageHandler(svc chat.ChatService) *MessageHandler {
	return &MessageHandler{Chat: svc}
}

// SendMessageHandler persists a chat message and relays it to the booking room.
func (h *MessageHandler) SendMessageHandler(c *gin.Context) {
	var msg models.Message
	if err := c.ShouldBindJSON(&msg); err != nil || msg.BookingID == "" {
		details := "bookingId is required"
		if err != nil {
			details = err.Error()
		}
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", details)
		return
	}
	saved, err := h.Chat.Send(c.Request.Context(), identityFrom(c), msg)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusCreated, "Message sent", saved)
}

// HistoryHandler returns the booking's messages. With ?grouped=true they are
// grouped by calendar day in the optional tz location.
func (h *MessageHandler) HistoryHandler(c *gin.Context) {
	msgs, err := h.Chat.History(c.Request.Context(), identityFrom(c), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	if c.Query("grouped") != "true" {
		utils.JSONData(c, http.StatusOK, "Messages fetched", msgs)
		return
	}
	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Unknown time zone", tz)
			return
		}
		loc = l
	}
	utils.JSONData(c, http.StatusOK, "Messages fetched", models.GroupByDay(msgs, loc))
}
