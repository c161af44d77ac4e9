package registry

import (
	"hotelrates/internal/app/auth"
	pricingapp "hotelrates/internal/app/handlers/pricing"
	roomsapp "hotelrates/internal/app/handlers/rooms"
	siteconfigapp "hotelrates/internal/app/handlers/siteconfig"
	"hotelrates/internal/domain/booking"
	"hotelrates/internal/domain/pricing"
	"hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
)

// replayClasses are the errors a remembered failure keeps across replays.
var replayClasses = []error{
	auth.ErrUnauthenticated,
	auth.ErrForbidden,
	pricing.ErrUnknownRoom,
	pricing.ErrRuleNotFound,
	pricing.ErrInvalidDateRange,
	pricing.ErrInvalidRule,
	pricing.ErrInvalidRoomPrice,
	rooms.ErrRoomNotFound,
	rooms.ErrIDRequired,
	rooms.ErrInvalidPrice,
	rooms.ErrCategoryEmpty,
	booking.ErrBookingNotFound,
	booking.ErrRoomUnavailable,
	booking.ErrInvalidState,
	booking.ErrCheckInInPast,
	booking.ErrGuestRequired,
	booking.ErrRoomRequired,
	booking.ErrInvalidGuests,
	booking.ErrOverCapacity,
	daterange.ErrInvalidRange,
	daterange.ErrInvalidDate,
	pricingapp.ErrRoomIDRequired,
	pricingapp.ErrRuleIDRequired,
	roomsapp.ErrPhotoRequired,
	roomsapp.ErrPhotoStoreUnavailable,
	siteconfigapp.ErrNavKeyRequired,
	siteconfigapp.ErrDuplicateNavKey,
}
