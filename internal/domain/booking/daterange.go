package booking

import (
	"errors"
	"strings"
	"time"

	"hotelrates/internal/domain/shared/daterange"
)

// DisplayLayout is the human readable format written next to the ISO dates.
const DisplayLayout = "Jan 2, 2006"

var (
	ErrCheckInInPast    = errors.New("booking: check-in date is in the past")
	ErrUnresolvableDate = errors.New("booking: stay dates cannot be resolved")
)

// legacyLayouts are the formats found in records that predate the ISO fields.
var legacyLayouts = []string{
	DisplayLayout,
	"January 2, 2006",
	"Mon Jan 02 2006",
	"Mon, Jan 2, 2006",
	"01/02/2006",
	time.RFC3339,
	daterange.ISODate,
}

func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if daterange.Truncate(dr.CheckIn).Before(daterange.Truncate(now)) {
		return ErrCheckInInPast
	}
	return nil
}

// Stay resolves the booked range. Each bound comes from its ISO field when
// that parses, otherwise from the display field with the legacy layouts. The
// range is returned as stored: zero-length and inverted ranges are not
// errors, so overlap tests still see them. Only a bound that parses from
// neither field is ErrUnresolvableDate.
func (b *Booking) Stay() (daterange.DateRange, error) {
	in, err := resolveDate(b.ISOCheckIn, b.CheckIn)
	if err != nil {
		return daterange.DateRange{}, err
	}
	out, err := resolveDate(b.ISOCheckOut, b.CheckOut)
	if err != nil {
		return daterange.DateRange{}, err
	}
	return daterange.DateRange{CheckIn: in, CheckOut: out}, nil
}

func resolveDate(iso, display string) (time.Time, error) {
	var isoErr error
	if strings.TrimSpace(iso) != "" {
		t, err := daterange.ParseDate(iso)
		if err == nil {
			return t, nil
		}
		isoErr = err
	}
	display = strings.TrimSpace(display)
	if display != "" {
		for _, layout := range legacyLayouts {
			if t, err := time.Parse(layout, display); err == nil {
				return daterange.Truncate(t), nil
			}
		}
	}
	if isoErr != nil {
		return time.Time{}, errors.Join(ErrUnresolvableDate, isoErr)
	}
	return time.Time{}, ErrUnresolvableDate
}
