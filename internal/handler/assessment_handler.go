package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/service"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
	"github.com/siwes-hub/logbook-api/pkg/response"
)

// AssessmentHandler wires HTTP endpoints to the assessment service.
type AssessmentHandler struct {
	service *service.AssessmentService
	metrics *service.MetricsService
}

// NewAssessmentHandler creates a new handler.
func NewAssessmentHandler(svc *service.AssessmentService, metrics *service.MetricsService) *AssessmentHandler {
	return &AssessmentHandler{service: svc, metrics: metrics}
}

// Submit godoc
// @Summary Grade a logbook
// @Description Record the terminal assessment; an already graded logbook refuses a second
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Logbook id"
// @Param payload body dto.SubmitAssessmentRequest true "Scores and verdict"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /logbooks/{id}/assessment [post]
func (h *AssessmentHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessment payload"))
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncWorkflowEvent("assessment_submit")
	}
	response.Created(c, resp)
}

// Get godoc
// @Summary Fetch a logbook's assessment
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Logbook id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /logbooks/{id}/assessment [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	assessment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}
