package handlers

import (
	"net/http"

	"lawdesk/services/account"
	"lawdesk/services/media"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Accounts account.AccountService
	Issuer   *media.Issuer
}

func NewAuthHandler(accounts account.AccountService, issuer *media.Issuer) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Issuer: issuer}
}

// LoginHandler exchanges email and password for a bearer token.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	res, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Login successful", res)
}

// UpdateFCMTokenHandler registers the caller's push token.
func (h *AuthHandler) UpdateFCMTokenHandler(c *gin.Context) {
	var req struct {
		Token string `json:"fcmToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	id := identityFrom(c)
	if err := h.Accounts.UpdateFCMToken(c.Request.Context(), id.AccountID, req.Token); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "FCM token updated", nil)
}

// ChatTokenHandler issues a token for the hosted chat transport.
func (h *AuthHandler) ChatTokenHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Username == "" {
		req.Username = identityFrom(c).AccountID
	}
	tok, err := h.Issuer.ChatToken(req.Username)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Chat transport unavailable", err.Error())
		return
	}
	utils.JSONData(c, http.StatusOK, "Chat token issued", tok)
}
