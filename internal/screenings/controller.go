package screenings

import (
	"errors"
	"net/http"

	"cinebook/internal/shared/middleware"
	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateAuditorium handles POST /auditoriums (admin)
func (ctrl *Controller) CreateAuditorium(c *gin.Context) {
	var req CreateAuditoriumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	auditorium, err := ctrl.service.CreateAuditorium(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create auditorium", nil)
		return
	}

	response.Success(c, http.StatusCreated, "auditorium created", auditorium)
}

// ListAuditoriums handles GET /auditoriums
func (ctrl *Controller) ListAuditoriums(c *gin.Context) {
	auditoriums, err := ctrl.service.ListAuditoriums(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list auditoriums", nil)
		return
	}
	response.Success(c, http.StatusOK, "auditoriums retrieved", auditoriums)
}

// CreateScreening handles POST /screenings (admin)
func (ctrl *Controller) CreateScreening(c *gin.Context) {
	var req CreateScreeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	screening, err := ctrl.service.CreateScreening(c.Request.Context(), &req, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTimeRange), errors.Is(err, ErrScreeningInPast):
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "auditorium not found", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to create screening", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, "screening created", screening)
}

// GetScreening handles GET /screenings/:id
func (ctrl *Controller) GetScreening(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid screening id", nil)
		return
	}

	screening, err := ctrl.service.GetScreening(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "screening not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get screening", nil)
		return
	}

	response.Success(c, http.StatusOK, "screening retrieved", screening)
}

// ListScreenings handles GET /screenings
func (ctrl *Controller) ListScreenings(c *gin.Context) {
	var query ScreeningListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	result, err := ctrl.service.ListScreenings(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list screenings", nil)
		return
	}

	response.Success(c, http.StatusOK, "screenings retrieved", result)
}

// CancelScreening handles POST /screenings/:id/cancel (admin)
func (ctrl *Controller) CancelScreening(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid screening id", nil)
		return
	}

	if err := ctrl.service.CancelScreening(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "screening not found", nil)
		case errors.Is(err, ErrScreeningNotActive):
			response.Error(c, http.StatusConflict, "screening is not active", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to cancel screening", nil)
		}
		return
	}

	response.Success(c, http.StatusOK, "screening cancelled", nil)
}
