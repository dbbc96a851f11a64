package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siwes-hub/logbook-api/internal/service"
	"github.com/siwes-hub/logbook-api/pkg/response"
)

// LegacyHandler exposes the migration endpoints against the legacy backend.
type LegacyHandler struct {
	service *service.LegacySyncService
}

// NewLegacyHandler creates a new handler.
func NewLegacyHandler(svc *service.LegacySyncService) *LegacyHandler {
	return &LegacyHandler{service: svc}
}

// SyncStudent godoc
// @Summary Import a student's records from the legacy backend
// @Tags Legacy
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /legacy/sync/{studentId} [post]
func (h *LegacyHandler) SyncStudent(c *gin.Context) {
	report, err := h.service.SyncStudent(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// AssessorWorklist godoc
// @Summary Legacy logbook list for an assessor
// @Tags Legacy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessor id"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /legacy/assessors/{id}/logbooks [get]
func (h *LegacyHandler) AssessorWorklist(c *gin.Context) {
	books, err := h.service.AssessorWorklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, nil)
}
