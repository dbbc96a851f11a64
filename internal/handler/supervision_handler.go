package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siwes-hub/logbook-api/internal/dto"
	"github.com/siwes-hub/logbook-api/internal/service"
	appErrors "github.com/siwes-hub/logbook-api/pkg/errors"
	"github.com/siwes-hub/logbook-api/pkg/response"
)

// SupervisionHandler wires HTTP endpoints to the supervision service.
type SupervisionHandler struct {
	service *service.SupervisionService
	metrics *service.MetricsService
}

// NewSupervisionHandler creates a new handler.
func NewSupervisionHandler(svc *service.SupervisionService, metrics *service.MetricsService) *SupervisionHandler {
	return &SupervisionHandler{service: svc, metrics: metrics}
}

// Status godoc
// @Summary Current supervision status
// @Tags Supervision
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /supervision [get]
func (h *SupervisionHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resp, err := h.service.Status(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Request godoc
// @Summary Request supervision
// @Description Student proposes a supervisor; refused while a request is pending or approved
// @Tags Supervision
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RequestSupervisionRequest true "Supervisor choice"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /supervision/request [post]
func (h *SupervisionHandler) Request(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RequestSupervisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid supervision payload"))
		return
	}

	resp, err := h.service.Request(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncWorkflowEvent("supervision_request")
	}
	response.Created(c, resp)
}

// Decide godoc
// @Summary Decide a pending supervision request
// @Tags Supervision
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student id"
// @Param payload body dto.DecideSupervisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /supervision/{studentId}/decide [post]
func (h *SupervisionHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DecideSupervisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	resp, err := h.service.Decide(c.Request.Context(), claims.UserID, c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncWorkflowEvent("supervision_decide")
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Pending godoc
// @Summary Pending requests for the supervisor
// @Tags Supervision
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /supervision/pending [get]
func (h *SupervisionHandler) Pending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.PendingForSupervisor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Students godoc
// @Summary Students the supervisor oversees
// @Tags Supervision
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /supervision/students [get]
func (h *SupervisionHandler) Students(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.ApprovedStudents(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
