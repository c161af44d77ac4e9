package daterange

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ISODate is the calendar date layout used for stays and stored bookings.
const ISODate = "2006-01-02"

const day = 24 * time.Hour

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDate  = errors.New("daterange: invalid ISO date")
)

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// ParseISO builds a validated range from two YYYY-MM-DD strings.
func ParseISO(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

// Truncate drops the clock part of t, keeping the UTC calendar date.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts started days between the bounds; partial days round up.
func (dr DateRange) Nights() int {
	return NightsBetween(dr.CheckIn, dr.CheckOut)
}

// NightsBetween returns ceil((checkOut - checkIn) / 24h). Non-positive spans yield <= 0.
func NightsBetween(checkIn, checkOut time.Time) int {
	span := checkOut.Sub(checkIn)
	return int(math.Ceil(float64(span) / float64(day)))
}

// Night returns the date of the i-th night of the stay.
func (dr DateRange) Night(i int) time.Time {
	return dr.CheckIn.AddDate(0, 0, i)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) Contains(other DateRange) bool {
	return !other.CheckIn.Before(dr.CheckIn) && !other.CheckOut.After(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

// ISO returns both bounds formatted as YYYY-MM-DD.
func (dr DateRange) ISO() (string, string) {
	return dr.CheckIn.Format(ISODate), dr.CheckOut.Format(ISODate)
}

func (dr DateRange) String() string {
	in, out := dr.ISO()
	return "[" + in + ", " + out + ")"
}
