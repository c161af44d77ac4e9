package policies

import (
	"context"
	"time"
)

// Collections whose changes are published on a ChangeFeed.
const (
	CollectionRooms      = "rooms"
	CollectionRules      = "pricing_rules"
	CollectionBookings   = "bookings"
	CollectionSiteConfig = "site_config"
)

type Change struct {
	Collection string
	DocumentID string
	Operation  string
	At         time.Time
}

// ChangeFeed delivers store change notifications. The channel closes when ctx
// ends or the underlying stream fails.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// CatalogRevision identifies the current state of rooms, rules and site
// configuration. It changes whenever any of them changes.
type CatalogRevision interface {
	Revision() uint64
}
