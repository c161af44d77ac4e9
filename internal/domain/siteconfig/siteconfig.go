// Package siteconfig assembles the hotel's public configuration from built-in
// defaults and the document stored by the back office.
package siteconfig

import (
	"context"
	"strings"
	"time"

	"hotelrates/internal/domain/shared/events"
)

type NavEntry struct {
	Key     string
	Label   string
	Path    string
	Visible bool
}

type Contact struct {
	Phone   string
	Email   string
	Address string
}

// Config is treated as immutable once built; use Builder to derive variants.
type Config struct {
	HotelName    string
	Tagline      string
	Currency     string
	CheckInTime  string
	CheckOutTime string
	Contact      Contact
	Navigation   []NavEntry
	UpdatedAt    time.Time
}

type Repository interface {
	// Load returns the stored overrides; found is false when none exist yet.
	Load(ctx context.Context) (cfg Config, found bool, err error)
	Save(ctx context.Context, cfg Config) error
}

func Default() Config {
	return Config{
		HotelName:    "Grand Horizon Hotel",
		Tagline:      "Stay where the city meets the sea",
		Currency:     "USD",
		CheckInTime:  "15:00",
		CheckOutTime: "11:00",
		Contact: Contact{
			Phone: "+1 555 0100",
			Email: "reservations@grandhorizon.example",
		},
		Navigation: []NavEntry{
			{Key: "home", Label: "Home", Path: "/", Visible: true},
			{Key: "rooms", Label: "Rooms", Path: "/rooms", Visible: true},
			{Key: "offers", Label: "Offers", Path: "/offers", Visible: true},
			{Key: "contact", Label: "Contact", Path: "/contact", Visible: true},
		},
	}
}

// Builder merges override documents on top of a base config.
type Builder struct {
	cfg Config
}

func NewBuilder(base Config) *Builder {
	return &Builder{cfg: base.clone()}
}

// With applies one override document. Non-empty scalar fields replace the
// current value; navigation entries merge by Key.
func (b *Builder) With(o Config) *Builder {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&b.cfg.HotelName, o.HotelName)
	set(&b.cfg.Tagline, o.Tagline)
	set(&b.cfg.Currency, o.Currency)
	set(&b.cfg.CheckInTime, o.CheckInTime)
	set(&b.cfg.CheckOutTime, o.CheckOutTime)
	set(&b.cfg.Contact.Phone, o.Contact.Phone)
	set(&b.cfg.Contact.Email, o.Contact.Email)
	set(&b.cfg.Contact.Address, o.Contact.Address)
	if o.UpdatedAt.After(b.cfg.UpdatedAt) {
		b.cfg.UpdatedAt = o.UpdatedAt
	}
	b.cfg.Navigation = mergeNavigation(b.cfg.Navigation, o.Navigation)
	return b
}

func (b *Builder) Build() Config {
	return b.cfg.clone()
}

// Merge is NewBuilder(base).With(override).Build().
func Merge(base, override Config) Config {
	return NewBuilder(base).With(override).Build()
}

// mergeNavigation keeps base order for base keys, replaces matched entries
// with the override, and appends override-only keys in override order.
func mergeNavigation(base, override []NavEntry) []NavEntry {
	if len(override) == 0 {
		return base
	}
	byKey := make(map[string]NavEntry, len(override))
	for _, e := range override {
		if e.Key == "" {
			continue
		}
		byKey[e.Key] = e
	}
	out := make([]NavEntry, 0, len(base)+len(override))
	seen := make(map[string]bool, len(base))
	for _, e := range base {
		if o, ok := byKey[e.Key]; ok {
			if o.Label == "" {
				o.Label = e.Label
			}
			if o.Path == "" {
				o.Path = e.Path
			}
			e = o
		}
		seen[e.Key] = true
		out = append(out, e)
	}
	for _, e := range override {
		if e.Key == "" || seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		out = append(out, e)
	}
	return out
}

func (c Config) clone() Config {
	c.Navigation = append([]NavEntry(nil), c.Navigation...)
	return c
}

// EventUpdated is published when the stored overrides change.
const EventUpdated = "site_config.updated"

func UpdatedEvent(at time.Time) events.Named {
	return events.Named{Name: EventUpdated, Aggregate: "site", Time: at.UTC()}
}
