package seats

import (
	"errors"
	"net/http"

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

// GetAvailability handles GET /screenings/:id/seats
func (ctrl *Controller) GetAvailability(c *gin.Context) {
	screeningID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid screening id", nil)
		return
	}

	snapshot, err := ctrl.service.GetAvailability(c.Request.Context(), screeningID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "screening not found", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get seat availability", nil)
		return
	}

	response.Success(c, http.StatusOK, "seat availability retrieved", snapshot)
}
