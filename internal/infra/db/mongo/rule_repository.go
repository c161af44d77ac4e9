package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "hotelrates/internal/domain/pricing"
)

type ruleRepository struct {
	col      *mongo.Collection
	readOnly bool
}

func (r ruleRepository) ByID(ctx context.Context, id string) (*domainpricing.Rule, error) {
	var doc ruleDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrRuleNotFound
		}
		return nil, err
	}
	rule := doc.toRule()
	return &rule, nil
}

// List returns every rule, active or not, ordered by id.
func (r ruleRepository) List(ctx context.Context) ([]domainpricing.Rule, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []ruleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domainpricing.Rule, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toRule())
	}
	return out, nil
}

func (r ruleRepository) Save(ctx context.Context, rule *domainpricing.Rule) error {
	if r.readOnly {
		return ErrReadOnly
	}
	doc := newRuleDocument(*rule)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return mapWriteErr(err)
}

func (r ruleRepository) Delete(ctx context.Context, id string) error {
	if r.readOnly {
		return ErrReadOnly
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapWriteErr(err)
	}
	if res.DeletedCount == 0 {
		return domainpricing.ErrRuleNotFound
	}
	return nil
}

type ruleDocument struct {
	ID             string     `bson:"_id"`
	Name           string     `bson:"name"`
	Type           string     `bson:"type"`
	AdjustmentType string     `bson:"adjustment_type"`
	Value          float64    `bson:"value"`
	StartDate      *time.Time `bson:"start_date,omitempty"`
	EndDate        *time.Time `bson:"end_date,omitempty"`
	DaysOfWeek     []int      `bson:"days_of_week,omitempty"`
	MinNights      *int       `bson:"min_nights,omitempty"`
	RoomCategories []string   `bson:"room_categories"`
	Priority       int        `bson:"priority"`
	IsActive       bool       `bson:"is_active"`
	UpdatedAt      time.Time  `bson:"updated_at"`
}

func newRuleDocument(r domainpricing.Rule) ruleDocument {
	return ruleDocument{
		ID:             r.ID,
		Name:           r.Name,
		Type:           string(r.Type),
		AdjustmentType: string(r.AdjustmentType),
		Value:          r.Value,
		StartDate:      utcPtr(r.StartDate),
		EndDate:        utcPtr(r.EndDate),
		DaysOfWeek:     append([]int(nil), r.DaysOfWeek...),
		MinNights:      r.MinNights,
		RoomCategories: append([]string{}, r.RoomCategories...),
		Priority:       r.Priority,
		IsActive:       r.IsActive,
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

func (d ruleDocument) toRule() domainpricing.Rule {
	return domainpricing.Rule{
		ID:             d.ID,
		Name:           d.Name,
		Type:           domainpricing.RuleType(d.Type),
		AdjustmentType: domainpricing.AdjustmentType(d.AdjustmentType),
		Value:          d.Value,
		StartDate:      utcPtr(d.StartDate),
		EndDate:        utcPtr(d.EndDate),
		DaysOfWeek:     d.DaysOfWeek,
		MinNights:      d.MinNights,
		RoomCategories: d.RoomCategories,
		Priority:       d.Priority,
		IsActive:       d.IsActive,
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
