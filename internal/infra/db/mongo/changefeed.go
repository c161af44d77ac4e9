package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelrates/internal/app/policies"
)

// ChangeFeed streams catalog and booking writes from a change stream. After a
// stream ends, the next Subscribe resumes from the last delivered event.
type ChangeFeed struct {
	DB     *mongo.Database
	Logger *slog.Logger

	mu     sync.Mutex
	resume bson.Raw
}

var watchedCollections = map[string]string{
	colRooms:      policies.CollectionRooms,
	colRules:      policies.CollectionRules,
	colSiteConfig: policies.CollectionSiteConfig,
	colBookings:   policies.CollectionBookings,
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey struct {
		ID any `bson:"_id"`
	} `bson:"documentKey"`
	ClusterTime primitive.Timestamp `bson:"clusterTime"`
}

func (f *ChangeFeed) Subscribe(ctx context.Context) (<-chan policies.Change, error) {
	names := make([]string, 0, len(watchedCollections))
	for c := range watchedCollections {
		names = append(names, c)
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ns.coll": bson.M{"$in": names}}}},
	}
	opts := options.ChangeStream()
	if token := f.resumeToken(); token != nil {
		opts.SetResumeAfter(token)
	}
	stream, err := f.DB.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	out := make(chan policies.Change, 16)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				f.warn("change event decode failed", err)
				continue
			}
			ch := policies.Change{
				Collection: watchedCollections[ev.NS.Coll],
				DocumentID: fmt.Sprint(ev.DocumentKey.ID),
				Operation:  ev.OperationType,
				At:         time.Unix(int64(ev.ClusterTime.T), 0).UTC(),
			}
			select {
			case out <- ch:
				f.setResumeToken(stream.ResumeToken())
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			f.warn("change stream ended", err)
		}
	}()
	return out, nil
}

func (f *ChangeFeed) resumeToken() bson.Raw {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resume
}

func (f *ChangeFeed) setResumeToken(t bson.Raw) {
	f.mu.Lock()
	f.resume = append(bson.Raw(nil), t...)
	f.mu.Unlock()
}

func (f *ChangeFeed) warn(msg string, err error) {
	if f.Logger != nil {
		f.Logger.Warn(msg, "error", err)
	}
}
