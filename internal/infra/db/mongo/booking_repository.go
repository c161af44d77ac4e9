package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelrates/internal/app/uow"
	domainbooking "hotelrates/internal/domain/booking"
	domainpricing "hotelrates/internal/domain/pricing"
)

var ErrConcurrentUpdate = errors.Join(uow.ErrConflict, errors.New("mongo: concurrent update detected"))

type bookingRepository struct {
	col      *mongo.Collection
	locks    *mongo.Collection
	readOnly bool
}

func (r bookingRepository) ByID(ctx context.Context, id string) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// ListByRoom returns every booking of the room in creation order. Old
// documents may lack the ISO date fields; the availability checker resolves
// or skips those.
func (r bookingRepository) ListByRoom(ctx context.Context, roomID string) ([]domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domainbooking.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toAggregate())
	}
	return out, nil
}

func (r bookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if r.readOnly {
		return ErrReadOnly
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

// LockRoom bumps a per-room counter inside the transaction. A second
// transaction doing the same before this one ends gets a write conflict, which
// surfaces as uow.ErrConflict.
func (r bookingRepository) LockRoom(ctx context.Context, roomID string) error {
	if r.readOnly {
		return ErrReadOnly
	}
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": roomID},
		bson.M{"$inc": bson.M{"seq": 1}, "$set": bson.M{"locked_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return mapWriteErr(err)
}

type bookingDocument struct {
	ID            string            `bson:"_id"`
	RoomID        string            `bson:"room_id"`
	GuestName     string            `bson:"guest_name"`
	GuestEmail    string            `bson:"guest_email,omitempty"`
	Guests        int               `bson:"guests"`
	ISOCheckIn    string            `bson:"iso_check_in,omitempty"`
	ISOCheckOut   string            `bson:"iso_check_out,omitempty"`
	CheckIn       string            `bson:"check_in,omitempty"`
	CheckOut      string            `bson:"check_out,omitempty"`
	Status        string            `bson:"status"`
	PaymentStatus string            `bson:"payment_status"`
	TotalPrice    float64           `bson:"total_price"`
	Nights        int               `bson:"nights"`
	Price         breakdownDocument `bson:"price"`
	CreatedAt     time.Time         `bson:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at"`
	Version       int64             `bson:"version"`
}

type breakdownDocument struct {
	BasePrice          float64              `bson:"base_price"`
	TotalNights        int                  `bson:"total_nights"`
	Subtotal           float64              `bson:"subtotal"`
	Adjustments        []adjustmentDocument `bson:"adjustments"`
	FinalTotal         float64              `bson:"final_total"`
	AverageNightlyRate float64              `bson:"average_nightly_rate"`
}

type adjustmentDocument struct {
	RuleName string  `bson:"rule_name"`
	Amount   float64 `bson:"amount"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	adjustments := make([]adjustmentDocument, 0, len(b.Price.Adjustments))
	for _, a := range b.Price.Adjustments {
		adjustments = append(adjustments, adjustmentDocument{RuleName: a.RuleName, Amount: a.Amount})
	}
	return bookingDocument{
		ID:            b.ID,
		RoomID:        b.RoomID,
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		Guests:        b.Guests,
		ISOCheckIn:    b.ISOCheckIn,
		ISOCheckOut:   b.ISOCheckOut,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		TotalPrice:    b.TotalPrice,
		Nights:        b.Nights,
		Price: breakdownDocument{
			BasePrice:          b.Price.BasePrice,
			TotalNights:        b.Price.TotalNights,
			Subtotal:           b.Price.Subtotal,
			Adjustments:        adjustments,
			FinalTotal:         b.Price.FinalTotal,
			AverageNightlyRate: b.Price.AverageNightlyRate,
		},
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	adjustments := make([]domainpricing.Adjustment, 0, len(d.Price.Adjustments))
	for _, a := range d.Price.Adjustments {
		adjustments = append(adjustments, domainpricing.Adjustment{RuleName: a.RuleName, Amount: a.Amount})
	}
	return &domainbooking.Booking{
		ID:            d.ID,
		RoomID:        d.RoomID,
		GuestName:     d.GuestName,
		GuestEmail:    d.GuestEmail,
		Guests:        d.Guests,
		ISOCheckIn:    d.ISOCheckIn,
		ISOCheckOut:   d.ISOCheckOut,
		CheckIn:       d.CheckIn,
		CheckOut:      d.CheckOut,
		Status:        domainbooking.Status(d.Status),
		PaymentStatus: domainbooking.PaymentStatus(d.PaymentStatus),
		TotalPrice:    d.TotalPrice,
		Nights:        d.Nights,
		Price: domainpricing.Breakdown{
			BasePrice:          d.Price.BasePrice,
			TotalNights:        d.Price.TotalNights,
			Subtotal:           d.Price.Subtotal,
			Adjustments:        adjustments,
			FinalTotal:         d.Price.FinalTotal,
			AverageNightlyRate: d.Price.AverageNightlyRate,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		Version:   d.Version,
	}
}
