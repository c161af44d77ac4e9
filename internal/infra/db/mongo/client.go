package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the repositories and the change feed.
const (
	colRooms      = "rooms"
	colBookings   = "bookings"
	colRules      = "pricing_rules"
	colSiteConfig = "site_config"
	colRoomLocks  = "room_locks"
)

type Client struct {
	DB *mongo.Database
}

// New connects and pings. Transactions and change streams need a replica set.
func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := m.Ping(ctx, nil); err != nil {
		_ = m.Disconnect(context.Background())
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the secondary indexes the repositories query by.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	_, err := c.DB.Collection(colBookings).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bsonKeys("room_id", "created_at")},
		{Keys: bsonKeys("status")},
	})
	if err != nil {
		return err
	}
	_, err = c.DB.Collection(colRooms).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bsonKeys("category")})
	return err
}
