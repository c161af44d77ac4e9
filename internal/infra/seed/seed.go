// Package seed loads a starting catalog from a TOML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/BurntSushi/toml"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	pricingapp "hotelrates/internal/app/handlers/pricing"
	roomsapp "hotelrates/internal/app/handlers/rooms"
	siteconfigapp "hotelrates/internal/app/handlers/siteconfig"
	"hotelrates/internal/app/queries"
)

// File is the seed document:
//
//	[site]
//	hotel_name = "Harbour Inn"
//
//	[[rooms]]
//	id = "r-101"
//	price = 120.0
//	category = "deluxe"
//
//	[[rules]]
//	id = "weekend"
//	type = "weekend"
//	adjustment_type = "percentage"
//	value = 20.0
//	room_categories = ["all"]
//	is_active = true
type File struct {
	Site  *dto.SiteConfig   `toml:"site"`
	Rooms []dto.Room        `toml:"rooms"`
	Rules []dto.PricingRule `toml:"rules"`
}

type Result struct {
	Rooms   int
	Rules   int
	Site    bool
	Skipped bool
}

func LoadFile(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("seed: %s: %w", path, err)
	}
	return f, nil
}

func Parse(r io.Reader) (File, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return File{}, fmt.Errorf("seed: %w", err)
	}
	return f, nil
}

// Seeder applies a File through the command bus as a system admin, so seeded
// entities are validated and published like back-office edits.
type Seeder struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

// Apply writes f only when no room exists yet; an existing catalog is left
// untouched.
func (s Seeder) Apply(ctx context.Context, f File) (Result, error) {
	ctx = auth.WithPrincipal(ctx, auth.Principal{Subject: "seed", Roles: []string{auth.RoleAdmin}})

	existing, err := queries.Ask[roomsapp.ListRoomsQuery, dto.RoomCollection](ctx, s.Queries, roomsapp.ListRoomsQuery{})
	if err != nil {
		return Result{}, err
	}
	if len(existing.Items) > 0 {
		s.log("catalog already present, seed skipped", "rooms", len(existing.Items))
		return Result{Skipped: true}, nil
	}

	var res Result
	for _, room := range f.Rooms {
		if _, err := commands.Dispatch[roomsapp.UpsertRoomCommand, *dto.Room](ctx, s.Commands, roomsapp.UpsertRoomCommand{Room: room}); err != nil {
			return res, fmt.Errorf("seed: room %q: %w", room.ID, err)
		}
		res.Rooms++
	}
	for _, rule := range f.Rules {
		if _, err := commands.Dispatch[pricingapp.UpsertRuleCommand, *dto.PricingRule](ctx, s.Commands, pricingapp.UpsertRuleCommand{Rule: rule}); err != nil {
			return res, fmt.Errorf("seed: rule %q: %w", rule.ID, err)
		}
		res.Rules++
	}
	if f.Site != nil {
		if _, err := commands.Dispatch[siteconfigapp.UpdateSiteConfigCommand, *dto.SiteConfig](ctx, s.Commands, siteconfigapp.UpdateSiteConfigCommand{Config: *f.Site}); err != nil {
			return res, fmt.Errorf("seed: site config: %w", err)
		}
		res.Site = true
	}
	s.log("catalog seeded", "rooms", res.Rooms, "rules", res.Rules, "site", res.Site)
	return res, nil
}

func (s Seeder) log(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Info(msg, args...)
	}
}
