package handlers

import (
	"net/http"

	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
)

type LawyerHandler struct {
	Repo lawyerRepo.LawyerRepository
}

func NewLawyerHandler(repo lawyerRepo.LawyerRepository) *LawyerHandler {
	return &LawyerHandler{Repo: repo}
}

// ListLawyersHandler returns the directory, filtered by specialization and city.
func (h *LawyerHandler) ListLawyersHandler(c *gin.Context) {
	lawyers, err := h.Repo.List(c.Request.Context(), lawyerRepo.ListFilter{
		Specialization: c.Query("specialization"),
		City:           c.Query("city"),
		VerifiedOnly:   c.Query("verified") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Lawyers fetched", lawyers)
}

func (h *LawyerHandler) GetLawyerHandler(c *gin.Context) {
	l, err := h.Repo.GetByLawyerID(c.Request.Context(), c.Param("lawyerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONData(c, http.StatusOK, "Lawyer fetched", l)
}
