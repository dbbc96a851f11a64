package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/service"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
	"github.com/siwes-hub/logbook-api/pkg/response"
)

// LogbookHandler wires HTTP endpoints to the logbook and view-state services.
type LogbookHandler struct {
	service *service.LogbookService
	uistate *service.UIStateService
}

// NewLogbookHandler creates a new handler.
func NewLogbookHandler(svc *service.LogbookService, uistate *service.UIStateService) *LogbookHandler {
	return &LogbookHandler{service: svc, uistate: uistate}
}

// Get godoc
// @Summary Fetch a student's logbook
// @Tags Logbooks
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/logbook [get]
func (h *LogbookHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	book, err := h.service.Get(c.Request.Context(), claims.UserID, claims.Role, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// Progress godoc
// @Summary Derived completion metrics
// @Description Scan-derived progress; a week counts once all five days are approved
// @Tags Logbooks
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/progress [get]
func (h *LogbookHandler) Progress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resp, err := h.service.Progress(c.Request.Context(), claims.UserID, claims.Role, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// AssessorList godoc
// @Summary Assessor work queue
// @Tags Logbooks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /logbooks [get]
func (h *LogbookHandler) AssessorList(c *gin.Context) {
	items, err := h.service.ListForAssessor(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetUIState godoc
// @Summary Stored portal view state
// @Tags Logbooks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /uistate [get]
func (h *LogbookHandler) GetUIState(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resp, err := h.uistate.Get(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// SetUIState godoc
// @Summary Store portal view state
// @Tags Logbooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UIStateRequest true "View state"
// @Success 204 "No Content"
// @Router /uistate [put]
func (h *LogbookHandler) SetUIState(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UIStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid view state payload"))
		return
	}
	if err := h.uistate.Set(c.Request.Context(), claims.Email, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
