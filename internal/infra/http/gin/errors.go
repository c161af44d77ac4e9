package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelrates/internal/app/auth"
	pricingapp "hotelrates/internal/app/handlers/pricing"
	roomsapp "hotelrates/internal/app/handlers/rooms"
	siteconfigapp "hotelrates/internal/app/handlers/siteconfig"
	"hotelrates/internal/app/middleware"
	"hotelrates/internal/app/uow"
	"hotelrates/internal/domain/booking"
	"hotelrates/internal/domain/pricing"
	"hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
)

type statusMapping struct {
	err    error
	status int
}

var errorStatuses = []statusMapping{
	{auth.ErrUnauthenticated, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},

	{pricing.ErrUnknownRoom, http.StatusNotFound},
	{rooms.ErrRoomNotFound, http.StatusNotFound},
	{booking.ErrBookingNotFound, http.StatusNotFound},
	{pricing.ErrRuleNotFound, http.StatusNotFound},

	{booking.ErrRoomUnavailable, http.StatusConflict},
	{booking.ErrInvalidState, http.StatusConflict},
	{uow.ErrConflict, http.StatusConflict},

	{daterange.ErrInvalidRange, http.StatusBadRequest},
	{daterange.ErrInvalidDate, http.StatusBadRequest},
	{pricing.ErrInvalidDateRange, http.StatusBadRequest},
	{pricing.ErrInvalidRule, http.StatusBadRequest},
	{pricing.ErrInvalidRoomPrice, http.StatusUnprocessableEntity},
	{booking.ErrCheckInInPast, http.StatusBadRequest},
	{booking.ErrGuestRequired, http.StatusBadRequest},
	{booking.ErrRoomRequired, http.StatusBadRequest},
	{booking.ErrInvalidGuests, http.StatusBadRequest},
	{booking.ErrOverCapacity, http.StatusBadRequest},
	{rooms.ErrIDRequired, http.StatusBadRequest},
	{rooms.ErrInvalidPrice, http.StatusBadRequest},
	{rooms.ErrCategoryEmpty, http.StatusBadRequest},
	{pricingapp.ErrRoomIDRequired, http.StatusBadRequest},
	{pricingapp.ErrRuleIDRequired, http.StatusBadRequest},
	{roomsapp.ErrPhotoRequired, http.StatusBadRequest},
	{siteconfigapp.ErrNavKeyRequired, http.StatusBadRequest},
	{siteconfigapp.ErrDuplicateNavKey, http.StatusBadRequest},

	{roomsapp.ErrPhotoStoreUnavailable, http.StatusServiceUnavailable},

	// Replays keep their original class; only unclassified ones land here.
	{middleware.ErrReplayedFailure, http.StatusConflict},
}

// statusFor maps application errors onto HTTP status codes.
func statusFor(err error) int {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}
