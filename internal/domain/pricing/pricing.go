package pricing

import (
	"errors"
	"math"
	"time"

	"hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
)

// NightlyAdjustmentsLabel names the consolidated line for all per-night rules.
const NightlyAdjustmentsLabel = "Seasonal/Weekend Adjustments"

var (
	ErrInvalidDateRange = errors.New("pricing: stay must span at least one night")
	ErrUnknownRoom      = errors.New("pricing: unknown room")
	ErrInvalidRoomPrice = errors.New("pricing: room price must be a finite non-negative number")
	ErrInvalidRule      = errors.New("pricing: invalid rule")
)

type Adjustment struct {
	RuleName string
	Amount   float64
}

type Breakdown struct {
	BasePrice          float64
	TotalNights        int
	Subtotal           float64
	Adjustments        []Adjustment
	FinalTotal         float64
	AverageNightlyRate float64
}

func (b Breakdown) Copy() Breakdown {
	clone := b
	clone.Adjustments = append([]Adjustment(nil), b.Adjustments...)
	return clone
}

// Calculate prices a stay of room over [checkIn, checkOut) under rules.
// It is a pure function of its arguments.
//
// Per-night rules (every family except long-stay) are summed, not chained:
// all matching percentages add into one percentage and all fixed amounts add
// into one amount for that night. Long-stay rules then apply once, each to the
// same subtotal. Only the display order of Adjustments depends on rule order.
func Calculate(room *rooms.Room, checkIn, checkOut time.Time, rules []Rule) (Breakdown, error) {
	if room == nil {
		return Breakdown{}, ErrUnknownRoom
	}
	if !rooms.ValidPrice(room.Price) {
		return Breakdown{}, ErrInvalidRoomPrice
	}
	nights := daterange.NightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return Breakdown{}, ErrInvalidDateRange
	}

	active := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if err := r.Validate(); err != nil {
			return Breakdown{}, err
		}
		active = append(active, r)
	}

	var totalBase, totalAdjustments float64
	start := daterange.Truncate(checkIn)
	for i := 0; i < nights; i++ {
		night := start.AddDate(0, 0, i)
		base := room.Price
		totalBase += base

		var percent, fixed float64
		for _, r := range active {
			if r.Type == RuleLongStay || !r.AppliesTo(room) || !r.coversNight(night) {
				continue
			}
			switch r.AdjustmentType {
			case AdjustPercentage:
				percent += r.Value
			case AdjustFixedAmount:
				fixed += r.Value
			}
		}
		totalAdjustments += base*(percent/100) + fixed
	}

	subtotal := totalBase + totalAdjustments

	var lines []Adjustment
	if totalAdjustments != 0 {
		lines = append(lines, Adjustment{RuleName: NightlyAdjustmentsLabel, Amount: totalAdjustments})
	}
	var longStay float64
	for _, r := range active {
		if r.Type != RuleLongStay || r.MinNights == nil || nights < *r.MinNights || !r.AppliesTo(room) {
			continue
		}
		amount := r.Value
		if r.AdjustmentType == AdjustPercentage {
			amount = subtotal * (r.Value / 100)
		}
		longStay += amount
		lines = append(lines, Adjustment{RuleName: r.Name, Amount: amount})
	}

	final := math.Max(0, subtotal+longStay)
	return Breakdown{
		BasePrice:          room.Price,
		TotalNights:        nights,
		Subtotal:           subtotal,
		Adjustments:        lines,
		FinalTotal:         final,
		AverageNightlyRate: final / float64(nights),
	}, nil
}
