// Package registry builds the command and query buses with every handler
// registered and the standard middleware chain applied.
package registry

import (
	"log/slog"
	"time"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/commands"
	"hotelrates/internal/app/dto"
	availabilityapp "hotelrates/internal/app/handlers/availability"
	bookingapp "hotelrates/internal/app/handlers/booking"
	pricingapp "hotelrates/internal/app/handlers/pricing"
	roomsapp "hotelrates/internal/app/handlers/rooms"
	siteconfigapp "hotelrates/internal/app/handlers/siteconfig"
	"hotelrates/internal/app/middleware"
	"hotelrates/internal/app/outbox"
	"hotelrates/internal/app/policies"
	"hotelrates/internal/app/queries"
	"hotelrates/internal/app/uow"
	domainsiteconfig "hotelrates/internal/domain/siteconfig"
)

// Observer receives bus and booking samples; obs.Metrics implements it.
type Observer interface {
	middleware.Observer
	bookingapp.BookingObserver
}

type Deps struct {
	UoW         uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Idempotency middleware.IdempotencyStore
	Photos      policies.PhotoStore
	QuoteCache  policies.QuoteCache
	Catalog     policies.CatalogRevision
	CacheTTL    time.Duration
	Logger      *slog.Logger
	Observer    Observer
	Now         func() time.Time
	// SiteDefaults replaces siteconfig.Default() as the merge base when set.
	SiteDefaults *domainsiteconfig.Config
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func Build(d Deps) Buses {
	cmdBus := commands.NewInMemoryBus()
	var bookingObserver bookingapp.BookingObserver
	var observer middleware.Observer
	var skips availabilityapp.SkipCounter
	if d.Observer != nil {
		bookingObserver, observer, skips = d.Observer, d.Observer, d.Observer
	}

	commands.RegisterHandler[bookingapp.CreateBookingCommand, *dto.Booking](cmdBus, &bookingapp.CreateBookingHandler{
		UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: d.Encoder, Logger: d.Logger, Observer: bookingObserver, Now: d.Now,
	})
	cancel := bookingapp.NewCancelHandler(d.UoW, d.Outbox)
	arrive := bookingapp.NewArriveHandler(d.UoW, d.Outbox)
	checkOut := bookingapp.NewCheckOutHandler(d.UoW, d.Outbox)
	paid := bookingapp.NewMarkPaidHandler(d.UoW, d.Outbox)
	cancel.Now, arrive.Now, checkOut.Now, paid.Now = d.Now, d.Now, d.Now, d.Now
	cancel.Encoder, arrive.Encoder, checkOut.Encoder, paid.Encoder = d.Encoder, d.Encoder, d.Encoder, d.Encoder
	commands.RegisterHandler[bookingapp.CancelBookingCommand, *dto.Booking](cmdBus, cancel)
	commands.RegisterHandler[bookingapp.MarkArrivedCommand, *dto.Booking](cmdBus, arrive)
	commands.RegisterHandler[bookingapp.CheckOutBookingCommand, *dto.Booking](cmdBus, checkOut)
	commands.RegisterHandler[bookingapp.MarkPaidCommand, *dto.Booking](cmdBus, paid)
	commands.RegisterHandler[pricingapp.UpsertRuleCommand, *dto.PricingRule](cmdBus, &pricingapp.UpsertRuleHandler{UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: d.Encoder, Now: d.Now})
	commands.RegisterHandler[pricingapp.DeleteRuleCommand, struct{}](cmdBus, &pricingapp.DeleteRuleHandler{UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: d.Encoder, Now: d.Now})
	commands.RegisterHandler[roomsapp.UpsertRoomCommand, *dto.Room](cmdBus, &roomsapp.UpsertRoomHandler{UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: d.Encoder, Now: d.Now})
	commands.RegisterHandler[roomsapp.UploadRoomPhotoCommand, *dto.Room](cmdBus, &roomsapp.UploadRoomPhotoHandler{UoWFactory: d.UoW, Photos: d.Photos, Outbox: d.Outbox, Encoder: d.Encoder, Logger: d.Logger, Now: d.Now})
	commands.RegisterHandler[siteconfigapp.UpdateSiteConfigCommand, *dto.SiteConfig](cmdBus, &siteconfigapp.UpdateSiteConfigHandler{UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: d.Encoder, Now: d.Now})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[pricingapp.QuoteQuery, dto.Quote](queryBus, &pricingapp.QuoteHandler{
		UoWFactory: d.UoW, Cache: d.QuoteCache, Catalog: d.Catalog, CacheTTL: d.CacheTTL, Logger: d.Logger,
	})
	queries.RegisterHandler[pricingapp.ListRulesQuery, []dto.PricingRule](queryBus, &pricingapp.ListRulesHandler{UoWFactory: d.UoW})
	queries.RegisterHandler[roomsapp.ListRoomsQuery, dto.RoomCollection](queryBus, &roomsapp.ListRoomsHandler{UoWFactory: d.UoW})
	queries.RegisterHandler[availabilityapp.CheckAvailabilityQuery, dto.Availability](queryBus, &availabilityapp.CheckAvailabilityHandler{UoWFactory: d.UoW, Logger: d.Logger, Skips: skips})
	queries.RegisterHandler[availabilityapp.RoomCalendarQuery, dto.Calendar](queryBus, &availabilityapp.RoomCalendarHandler{UoWFactory: d.UoW})
	queries.RegisterHandler[bookingapp.ListRoomBookingsQuery, dto.BookingCollection](queryBus, &bookingapp.ListRoomBookingsHandler{UoWFactory: d.UoW})
	queries.RegisterHandler[siteconfigapp.GetSiteConfigQuery, dto.SiteConfig](queryBus, &siteconfigapp.GetSiteConfigHandler{UoWFactory: d.UoW, Defaults: d.SiteDefaults})

	cmdMiddleware := []middleware.CommandMiddleware{
		middleware.Logging(d.Logger, observer),
		middleware.Authorization(auth.RoleAuthorizer{}),
		middleware.Validation(middleware.SelfValidator{}),
	}
	if d.Idempotency != nil {
		cmdMiddleware = append(cmdMiddleware, middleware.Idempotency(d.Idempotency, nil, replayClasses...))
	}
	if d.Outbox != nil {
		cmdMiddleware = append(cmdMiddleware, middleware.OutboxFlush(d.Outbox))
	}
	cmdMiddleware = append(cmdMiddleware, middleware.Transaction(d.UoW, nil))

	return Buses{
		Commands: middleware.ChainCommands(cmdBus, cmdMiddleware...),
		Queries: middleware.ChainQueries(queryBus,
			middleware.QueryLogging(d.Logger, observer),
			middleware.QueryAuthorization(auth.RoleAuthorizer{}),
			middleware.QueryValidation(middleware.SelfValidator{}),
		),
	}
}
