package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrooms "hotelrates/internal/domain/rooms"
)

type roomRepository struct {
	col      *mongo.Collection
	readOnly bool
}

func (r roomRepository) ByID(ctx context.Context, id string) (*domainrooms.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrooms.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r roomRepository) List(ctx context.Context) ([]*domainrooms.Room, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []roomDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainrooms.Room, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

// Save upserts guarded by the version read earlier in the unit.
func (r roomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	if r.readOnly {
		return ErrReadOnly
	}
	doc := newRoomDocument(room)
	filter := bson.M{"_id": doc.ID, "version": room.Version}
	doc.Version = room.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	room.Version = doc.Version
	return nil
}

type roomDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Price       float64   `bson:"price"`
	Category    string    `bson:"category"`
	Capacity    int       `bson:"capacity"`
	Amenities   []string  `bson:"amenities"`
	Photos      []string  `bson:"photos"`
	Version     int64     `bson:"version"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newRoomDocument(r *domainrooms.Room) roomDocument {
	return roomDocument{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    string(r.Category),
		Capacity:    r.Capacity,
		Amenities:   append([]string{}, r.Amenities...),
		Photos:      append([]string{}, r.Photos...),
		Version:     r.Version,
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (d roomDocument) toAggregate() *domainrooms.Room {
	return &domainrooms.Room{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    domainrooms.Category(d.Category),
		Capacity:    d.Capacity,
		Amenities:   d.Amenities,
		Photos:      d.Photos,
		Version:     d.Version,
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
