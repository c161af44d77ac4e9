package dto

import (
	"time"

	domainpricing "hotelrates/internal/domain/pricing"
	"hotelrates/internal/domain/shared/daterange"
)

type Adjustment struct {
	RuleName string  `json:"rule_name"`
	Amount   float64 `json:"amount"`
}

type PriceBreakdown struct {
	BasePrice          float64      `json:"base_price"`
	TotalNights        int          `json:"total_nights"`
	Subtotal           float64      `json:"subtotal"`
	Adjustments        []Adjustment `json:"adjustments"`
	FinalTotal         float64      `json:"final_total"`
	AverageNightlyRate float64      `json:"average_nightly_rate"`
}

type Quote struct {
	RoomID   string         `json:"room_id"`
	CheckIn  string         `json:"check_in"`
	CheckOut string         `json:"check_out"`
	Currency string         `json:"currency"`
	Price    PriceBreakdown `json:"price"`
	Revision uint64         `json:"revision"`
}

func MapBreakdown(b domainpricing.Breakdown) PriceBreakdown {
	adjustments := make([]Adjustment, 0, len(b.Adjustments))
	for _, a := range b.Adjustments {
		adjustments = append(adjustments, Adjustment{RuleName: a.RuleName, Amount: a.Amount})
	}
	return PriceBreakdown{
		BasePrice:          b.BasePrice,
		TotalNights:        b.TotalNights,
		Subtotal:           b.Subtotal,
		Adjustments:        adjustments,
		FinalTotal:         b.FinalTotal,
		AverageNightlyRate: b.AverageNightlyRate,
	}
}

// PricingRule is the wire shape of a rule; dates are YYYY-MM-DD.
type PricingRule struct {
	ID             string    `json:"id" toml:"id"`
	Name           string    `json:"name" toml:"name"`
	Type           string    `json:"type" toml:"type"`
	AdjustmentType string    `json:"adjustment_type" toml:"adjustment_type"`
	Value          float64   `json:"value" toml:"value"`
	StartDate      string    `json:"start_date,omitempty" toml:"start_date"`
	EndDate        string    `json:"end_date,omitempty" toml:"end_date"`
	DaysOfWeek     []int     `json:"days_of_week,omitempty" toml:"days_of_week"`
	MinNights      *int      `json:"min_nights,omitempty" toml:"min_nights"`
	RoomCategories []string  `json:"room_categories" toml:"room_categories"`
	Priority       int       `json:"priority" toml:"priority"`
	IsActive       bool      `json:"is_active" toml:"is_active"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" toml:"updated_at"`
}

func MapRule(r domainpricing.Rule) PricingRule {
	out := PricingRule{
		ID:             r.ID,
		Name:           r.Name,
		Type:           string(r.Type),
		AdjustmentType: string(r.AdjustmentType),
		Value:          r.Value,
		DaysOfWeek:     append([]int(nil), r.DaysOfWeek...),
		RoomCategories: append([]string(nil), r.RoomCategories...),
		Priority:       r.Priority,
		IsActive:       r.IsActive,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.MinNights != nil {
		n := *r.MinNights
		out.MinNights = &n
	}
	if r.StartDate != nil {
		out.StartDate = r.StartDate.Format(daterange.ISODate)
	}
	if r.EndDate != nil {
		out.EndDate = r.EndDate.Format(daterange.ISODate)
	}
	return out
}

// ToDomain parses the rule dates; an unparsable date is an invalid rule.
func (r PricingRule) ToDomain() (domainpricing.Rule, error) {
	out := domainpricing.Rule{
		ID:             r.ID,
		Name:           r.Name,
		Type:           domainpricing.RuleType(r.Type),
		AdjustmentType: domainpricing.AdjustmentType(r.AdjustmentType),
		Value:          r.Value,
		DaysOfWeek:     append([]int(nil), r.DaysOfWeek...),
		RoomCategories: append([]string(nil), r.RoomCategories...),
		Priority:       r.Priority,
		IsActive:       r.IsActive,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.MinNights != nil {
		n := *r.MinNights
		out.MinNights = &n
	}
	var err error
	if out.StartDate, err = optionalDate(r.ID, r.StartDate); err != nil {
		return domainpricing.Rule{}, err
	}
	if out.EndDate, err = optionalDate(r.ID, r.EndDate); err != nil {
		return domainpricing.Rule{}, err
	}
	return out, nil
}

func optionalDate(ruleID, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := daterange.ParseDate(raw)
	if err != nil {
		return nil, &domainpricing.RuleError{RuleID: ruleID, Reason: err.Error()}
	}
	return &t, nil
}
