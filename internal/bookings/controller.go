package bookings

import (
	"errors"
	"net/http"

	"cinebook/internal/seats"
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

// CreateBooking handles POST /bookings
func (ctrl *Controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), userID, &req)
	if err != nil {
		if ue, isConflict := seats.IsUnavailable(err); isConflict {
			response.Error(c, http.StatusConflict, "some seats are no longer available", gin.H{
				"conflicting_seats": ue.ConflictingSeats,
			})
			return
		}
		switch {
		case errors.Is(err, ErrTooManySeats):
			response.Error(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, ErrScreeningNotBookable):
			response.Error(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, ErrNotFound), errors.Is(err, seats.ErrNotFound):
			response.Error(c, http.StatusNotFound, "screening or seat not found", nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to create booking", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, "booking created, seats held", booking)
}

// GetBooking handles GET /bookings/:id
func (ctrl *Controller) GetBooking(c *gin.Context) {
	bookingID, userID, ok := ctrl.bindBookingRequest(c)
	if !ok {
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		ctrl.respondError(c, err, "failed to get booking")
		return
	}

	response.Success(c, http.StatusOK, "booking retrieved", booking)
}

// ConfirmPayment handles POST /bookings/:id/payment
func (ctrl *Controller) ConfirmPayment(c *gin.Context) {
	bookingID, userID, ok := ctrl.bindBookingRequest(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	booking, err := ctrl.service.ConfirmPayment(c.Request.Context(), userID, bookingID, &req)
	if err != nil {
		if errors.Is(err, seats.ErrHoldExpired) || errors.Is(err, seats.ErrHoldNotFound) {
			response.Error(c, http.StatusConflict, "seat hold expired, booking expired", nil)
			return
		}
		ctrl.respondError(c, err, "failed to process payment")
		return
	}

	if booking.Status == StatusCancelled {
		response.Success(c, http.StatusOK, "payment declined, booking cancelled", booking)
		return
	}
	response.Success(c, http.StatusOK, "payment successful, booking confirmed", booking)
}

// CancelBooking handles POST /bookings/:id/cancel
func (ctrl *Controller) CancelBooking(c *gin.Context) {
	bookingID, userID, ok := ctrl.bindBookingRequest(c)
	if !ok {
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		ctrl.respondError(c, err, "failed to cancel booking")
		return
	}

	response.Success(c, http.StatusOK, "booking cancelled", booking)
}

// ListMyBookings handles GET /my-tickets
func (ctrl *Controller) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	list, err := ctrl.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list bookings", nil)
		return
	}

	response.Success(c, http.StatusOK, "bookings retrieved", list)
}

func (ctrl *Controller) bindBookingRequest(c *gin.Context) (bookingID, userID uuid.UUID, ok bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid booking id", nil)
		return uuid.Nil, uuid.Nil, false
	}
	userID, authed := middleware.CurrentUserID(c)
	if !authed {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return bookingID, userID, true
}

func (ctrl *Controller) respondError(c *gin.Context, err error, fallback string) {
	if ite, isTransition := IsInvalidTransition(err); isTransition {
		response.Error(c, http.StatusBadRequest, ite.Error(), nil)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "booking not found", nil)
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "access denied", nil)
	default:
		response.Error(c, http.StatusInternalServerError, fallback, nil)
	}
}
