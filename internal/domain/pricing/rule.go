package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"hotelrates/internal/domain/rooms"
	"hotelrates/internal/domain/shared/daterange"
	"hotelrates/internal/domain/shared/events"
)

type RuleType string

const (
	RuleSeasonal   RuleType = "seasonal"
	RuleWeekend    RuleType = "weekend"
	RuleLongStay   RuleType = "long-stay"
	RuleLastMinute RuleType = "last-minute"
	RuleCustom     RuleType = "custom"
)

type AdjustmentType string

const (
	AdjustPercentage  AdjustmentType = "percentage"
	AdjustFixedAmount AdjustmentType = "fixed_amount"
)

var ErrRuleNotFound = errors.New("pricing: rule not found")

// AllCategories makes a rule apply to every room.
const AllCategories = "all"

// Rule is a pricing rule managed from the back office. Value is signed:
// negative values are discounts, positive values are surcharges.
//
// Priority is stored for the admin UI but evaluation never reads it; every
// matching rule contributes.
type Rule struct {
	ID             string
	Name           string
	Type           RuleType
	AdjustmentType AdjustmentType
	Value          float64
	StartDate      *time.Time
	EndDate        *time.Time
	DaysOfWeek     []int
	MinNights      *int
	RoomCategories []string
	Priority       int
	IsActive       bool
	UpdatedAt      time.Time
}

type RuleRepository interface {
	ByID(ctx context.Context, id string) (*Rule, error)
	List(ctx context.Context) ([]Rule, error)
	Save(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, id string) error
}

// Validate rejects rules the engine cannot evaluate deterministically.
func (r Rule) Validate() error {
	switch r.Type {
	case RuleSeasonal, RuleWeekend, RuleLongStay, RuleLastMinute, RuleCustom:
	default:
		return r.invalid("unknown type %q", r.Type)
	}
	switch r.AdjustmentType {
	case AdjustPercentage, AdjustFixedAmount:
	default:
		return r.invalid("unknown adjustment type %q", r.AdjustmentType)
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return r.invalid("value must be finite")
	}
	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return r.invalid("start date %s is after end date %s", r.StartDate.Format(time.DateOnly), r.EndDate.Format(time.DateOnly))
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return r.invalid("weekday %d out of range 0-6", d)
		}
	}
	if r.MinNights != nil && *r.MinNights < 0 {
		return r.invalid("min nights must be >= 0")
	}
	return nil
}

// AppliesTo reports whether the rule's category filter selects the room.
// Entries may name a category, a room id, or the all sentinel.
func (r Rule) AppliesTo(room *rooms.Room) bool {
	for _, c := range r.RoomCategories {
		c = strings.TrimSpace(c)
		if c == AllCategories || c == string(room.Category) || c == room.ID {
			return true
		}
	}
	return false
}

// coversNight is the per-night gate for non long-stay families. Bounds are
// compared as calendar days, like the night itself.
func (r Rule) coversNight(night time.Time) bool {
	switch r.Type {
	case RuleSeasonal, RuleCustom:
		if r.StartDate != nil && night.Before(daterange.Truncate(*r.StartDate)) {
			return false
		}
		if r.EndDate != nil && night.After(daterange.Truncate(*r.EndDate)) {
			return false
		}
		return true
	case RuleWeekend:
		wd := int(night.Weekday())
		for _, d := range r.DaysOfWeek {
			if d == wd {
				return true
			}
		}
		return false
	case RuleLongStay:
		return false
	default:
		// last-minute has no per-night condition.
		return true
	}
}

func (r Rule) invalid(format string, args ...any) error {
	return &RuleError{RuleID: r.ID, Reason: fmt.Sprintf(format, args...)}
}

// RuleError identifies the offending rule; it matches ErrInvalidRule.
type RuleError struct {
	RuleID string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("pricing: invalid rule %q: %s", e.RuleID, e.Reason)
}

func (e *RuleError) Unwrap() error { return ErrInvalidRule }

const (
	EventRuleUpserted = "pricing_rule.upserted"
	EventRuleDeleted  = "pricing_rule.deleted"
)

func RuleEvent(name, id string, at time.Time) events.Named {
	return events.Named{Name: name, Aggregate: id, Time: at.UTC()}
}
