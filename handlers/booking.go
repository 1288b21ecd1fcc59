package handlers

import (
	"errors"
	"net/http"

	"seabook/models"
	"seabook/services/booking"
	"seabook/services/resilience"
	"seabook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking engine over HTTP. End-user auth and
// request shaping beyond basic binding belong to the caller layer in front
// of this service.
type BookingHandler struct {
	Service booking.BookingSessionService
	Logger  *zap.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(service booking.BookingSessionService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// CreateSession starts a new booking session for a cruise.
func (h *BookingHandler) CreateSession(c *gin.Context) {
	var input struct {
		CruiseReference string                      `json:"cruiseReference" binding:"required"`
		Passengers      models.PassengerComposition `json:"passengers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.CreateSession(c.Request.Context(), input.Passengers, input.CruiseReference)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession returns a live booking session.
func (h *BookingHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetCabinGrades returns live cabin-grade pricing for the session.
func (h *BookingHandler) GetCabinGrades(c *gin.Context) {
	quotes, err := h.Service.GetCabinGrades(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		if booking.HasCode(err, booking.CodeNoAvailability) {
			// Sold out is a business outcome, not an error page.
			c.JSON(http.StatusOK, gin.H{"quotes": []models.CabinGradeQuote{}, "soldOut": true})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes, "soldOut": false})
}

// SelectCabin commits a cabin grade to the provider basket.
func (h *BookingHandler) SelectCabin(c *gin.Context) {
	var input struct {
		GradeID     string `json:"gradeId" binding:"required"`
		RateCode    string `json:"rateCode"`
		CabinNumber string `json:"cabinNumber"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	item, err := h.Service.SelectCabin(c.Request.Context(), c.Param("sessionID"), input.GradeID, input.RateCode, input.CabinNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetBasket returns the committed basket for the session.
func (h *BookingHandler) GetBasket(c *gin.Context) {
	item, err := h.Service.GetBasket(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateBooking submits passengers and contact details for the held basket.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input struct {
		Passengers []models.Passenger    `json:"passengers" binding:"required"`
		Contact    models.ContactDetails `json:"contact" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Service.CreateBooking(c.Request.Context(), c.Param("sessionID"), input.Passengers, input.Contact)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ProcessPayment submits the deposit payment for a booking.
func (h *BookingHandler) ProcessPayment(c *gin.Context) {
	var input models.PaymentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Service.ProcessPayment(c.Request.Context(), c.Param("bookingID"), input)
	if err != nil {
		// The reservation stands either way; the client retries payment
		// against the same booking.
		if booking.HasCode(err, booking.CodePaymentFailed) && result != nil {
			c.JSON(http.StatusPaymentRequired, gin.H{"booking": result, "error": "payment was declined"})
			return
		}
		if booking.HasCode(err, booking.CodePaymentUnsettled) && result != nil {
			// Not a decline: the provider never answered, so the caller
			// must not tell the user their card was refused.
			c.JSON(http.StatusBadGateway, gin.H{"booking": result, "error": "payment outcome unknown, retry later"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondError maps engine errors onto HTTP statuses so the caller layer
// can distinguish retry, restart, and escalate outcomes.
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	var be *booking.BookingError
	if errors.As(err, &be) {
		status := http.StatusConflict
		switch be.Code {
		case booking.CodeCruiseNotFound, booking.CodeSessionNotFound, booking.CodeBookingNotFound:
			status = http.StatusNotFound
		case booking.CodeSessionExpired:
			status = http.StatusGone
		case booking.CodePassengerMismatch, booking.CodeInvalidState:
			status = http.StatusBadRequest
		case booking.CodePricingDesync, booking.CodeBasketUnavailable:
			status = http.StatusConflict
		case booking.CodePaymentFailed:
			status = http.StatusPaymentRequired
		case booking.CodePaymentUnsettled:
			status = http.StatusBadGateway
		}
		c.JSON(status, utils.ErrorResponse{Message: be.Message, Code: be.Code})
		return
	}

	var cancelled *resilience.CancelledError
	if errors.As(err, &cancelled) {
		// The client went away; nobody reads this body.
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	var transient *resilience.TransientError
	if errors.As(err, &transient) {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse{Message: "reservation provider is unavailable, try again", Code: "transient"})
		return
	}
	var expired *resilience.SessionExpiredError
	if errors.As(err, &expired) {
		c.JSON(http.StatusGone, utils.ErrorResponse{Message: "provider session expired, start a new session", Code: "sessionExpired"})
		return
	}
	var invalid *resilience.SessionInvalidError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse{Message: "provider rejected our session", Code: "sessionInvalid"})
		return
	}
	var auth *resilience.AuthError
	if errors.As(err, &auth) {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse{Message: "provider authentication failed", Code: "authError"})
		return
	}

	h.Logger.Error("unhandled booking engine error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, utils.ErrorResponse{Message: "internal error"})
}
