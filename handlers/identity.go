package handlers

import (
	"lawdesk/middleware"
	"lawdesk/services/signaling"

	"github.com/gin-gonic/gin"
)

// identityFrom reads the caller set by the auth middleware.
func identityFrom(c *gin.Context) signaling.Identity {
	return signaling.Identity{
		AccountID: c.GetString(middleware.AccountIDKey),
		Role:      c.GetString(middleware.RoleKey),
		LawyerID:  c.GetString(middleware.LawyerIDKey),
		Name:      c.GetString(middleware.NameKey),
	}
}
