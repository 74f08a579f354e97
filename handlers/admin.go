package handlers

import (
	"net/http"

	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/services/admin"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Service admin.AdminService
}

func NewAdminHandler(svc admin.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// ListUsersHandler lists accounts, optionally narrowed by ?role=.
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.Service.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Users fetched", users)
}

func (h *AdminHandler) VerifyLawyerHandler(c *gin.Context) {
	l, err := h.Service.VerifyLawyer(c.Request.Context(), c.Param("lawyerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Lawyer verified", l)
}

func (h *AdminHandler) UpdateLawyerHandler(c *gin.Context) {
	var u lawyerRepo.LawyerUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	l, err := h.Service.UpdateLawyer(c.Request.Context(), c.Param("lawyerId"), u)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Lawyer updated", l)
}

func (h *AdminHandler) DeleteLawyerHandler(c *gin.Context) {
	if err := h.Service.DeleteLawyer(c.Request.Context(), c.Param("lawyerId")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Lawyer deleted", gin.H{"is_deleted": true})
}

// LawyerTransactionsHandler returns the payment history of a lawyer's bookings.
func (h *AdminHandler) LawyerTransactionsHandler(c *gin.Context) {
	list, err := h.Service.LawyerTransactions(c.Request.Context(), identityFrom(c), c.Param("lawyerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Transactions fetched", list)
}
