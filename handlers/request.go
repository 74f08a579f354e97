package handlers

import (
	"net/http"

	"lawdesk/models"
	"lawdesk/services/request"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	Service request.RequestService
}

func NewRequestHandler(svc request.RequestService) *RequestHandler {
	return &RequestHandler{Service: svc}
}

// SendRequestHandler lets a client message a lawyer before booking.
func (h *RequestHandler) SendRequestHandler(c *gin.Context) {
	var req struct {
		LawyerID string `json:"lawyerId" binding:"required"`
		Message  string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	r, err := h.Service.Send(c.Request.Context(), identityFrom(c), req.LawyerID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusCreated, "Request sent", r)
}

func (h *RequestHandler) ClientRequestsHandler(c *gin.Context) {
	list, err := h.Service.ListForClient(c.Request.Context(), identityFrom(c), c.Param("userId"))
	respondRequests(c, list, err)
}

func (h *RequestHandler) LawyerRequestsHandler(c *gin.Context) {
	list, err := h.Service.ListForLawyer(c.Request.Context(), identityFrom(c), c.Param("lawyerId"))
	respondRequests(c, list, err)
}

// MyRequestsHandler lists the caller's sent or received requests.
func (h *RequestHandler) MyRequestsHandler(c *gin.Context) {
	id := identityFrom(c)
	var (
		list []models.LawyerRequest
		err  error
	)
	if id.Role == models.RoleLawyer {
		list, err = h.Service.ListForLawyer(c.Request.Context(), id, id.LawyerID)
	} else {
		list, err = h.Service.ListForClient(c.Request.Context(), id, id.AccountID)
	}
	respondRequests(c, list, err)
}

// RespondRequestHandler accepts or rejects a request.
func (h *RequestHandler) RespondRequestHandler(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	r, err := h.Service.Respond(c.Request.Context(), identityFrom(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Request updated", r)
}

func respondRequests(c *gin.Context, list []models.LawyerRequest, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.LawyerRequest{}
	}
	utils.JSONData(c, http.StatusOK, "Requests fetched", list)
}
